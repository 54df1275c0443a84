package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeElapsed(t *testing.T) {
	start := time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want Elapsed
	}{
		{
			name: "One day and change",
			now:  time.Date(2025, 12, 5, 1, 2, 3, 0, time.UTC),
			want: Elapsed{Days: 1, Hours: 1, Minutes: 2, Seconds: 3},
		},
		{
			name: "Sub-second precision is dropped",
			now:  start.Add(59*time.Second + 999*time.Millisecond),
			want: Elapsed{Seconds: 59},
		},
		{
			name: "Thirty days is not a month yet",
			now:  start.AddDate(0, 0, 30),
			want: Elapsed{Days: 30, Weeks: 4},
		},
		{
			name: "Thirty-one days is one month",
			now:  start.AddDate(0, 0, 31),
			want: Elapsed{Days: 31, Weeks: 4, Months: 1},
		},
		{
			name: "Sixty-one days",
			now:  start.AddDate(0, 0, 61).Add(23*time.Hour + 59*time.Minute),
			want: Elapsed{Days: 61, Hours: 23, Minutes: 59, Weeks: 8, Months: 2},
		},
		{
			name: "A year uses the 30.44 divisor",
			now:  start.AddDate(0, 0, 365),
			want: Elapsed{Days: 365, Weeks: 52, Months: 11},
		},
		{
			name: "Anchor in the future clamps to zero",
			now:  start.Add(-time.Hour),
			want: Elapsed{},
		},
		{
			name: "Exactly at the anchor",
			now:  start,
			want: Elapsed{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeElapsed(start, tt.now))
		})
	}
}

func TestComputeElapsed_Remainders(t *testing.T) {
	start := time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)

	for s := int64(0); s < 10*86_400; s += 7_777 {
		e := ComputeElapsed(start, start.Add(time.Duration(s)*time.Second))
		assert.Equal(t, s, e.Days*86_400+e.Hours*3_600+e.Minutes*60+e.Seconds)
		assert.Equal(t, e.Days/7, e.Weeks)
	}
}
