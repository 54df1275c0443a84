package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnchor_Formats(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		want      Anchor
		expectErr bool
	}{
		{"ISO8601 Standard", "1990-10-25", Anchor{1990, time.October, 25, true}, false},
		{"Basic Format", "19901025", Anchor{1990, time.October, 25, true}, false},
		{"RFC3339", "1990-10-25T00:00:00Z", Anchor{1990, time.October, 25, true}, false},
		{"Truncated (Month-Day)", "--10-25", Anchor{2000, time.October, 25, false}, false},
		{"Truncated Basic", "--1025", Anchor{2000, time.October, 25, false}, false},
		{"Truncated Leap Day", "--02-29", Anchor{2000, time.February, 29, false}, false},
		{"Surrounding spaces", "  2025-12-04 ", Anchor{2025, time.December, 4, true}, false},
		{"Impossible day", "2025-02-30", Anchor{}, true},
		{"Impossible month", "2025-13-01", Anchor{}, true},
		{"Garbage Data", "not-a-date", Anchor{}, true},
		{"Empty Date", "", Anchor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnchor(tt.value)
			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAnchor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAnchor_Validation(t *testing.T) {
	_, err := NewAnchor(2025, time.February, 29)
	assert.ErrorIs(t, err, ErrInvalidAnchor, "2025 is not a leap year")

	_, err = NewAnchor(2025, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidAnchor)

	a, err := NewAnchor(2024, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", a.String())
}

func TestAnchor_ValidateRecurrence(t *testing.T) {
	noYear, err := ParseAnchor("--12-24")
	require.NoError(t, err)

	assert.NoError(t, noYear.Validate(Annual))
	assert.ErrorIs(t, noYear.Validate(OneTime), ErrInvalidAnchor, "a one-time event needs a year")
	assert.ErrorIs(t, Anchor{}.Validate(Annual), ErrInvalidAnchor)
	assert.Equal(t, "--12-24", noYear.String())
}

func TestRecurrenceFrom(t *testing.T) {
	assert.Equal(t, Annual, RecurrenceFrom(true))
	assert.Equal(t, OneTime, RecurrenceFrom(false))
	assert.Equal(t, "annual", Annual.String())
	assert.Equal(t, "one-time", OneTime.String())
}
