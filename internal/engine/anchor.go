package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-valentine/internal/config"
)

// ErrInvalidAnchor is returned (wrapped) whenever an occurrence anchor cannot be built.
var ErrInvalidAnchor = errors.New(config.ErrInvalidAnchor)

// Recurrence tells whether an anchor happens once or every year on the same month/day.
type Recurrence int

const (
	// OneTime anchors are the exact target day.
	OneTime Recurrence = iota
	// Annual anchors are re-derived every year from month and day.
	Annual
)

// RecurrenceFrom maps the stored is_recurring flag to a Recurrence.
func RecurrenceFrom(isRecurring bool) Recurrence {
	if isRecurring {
		return Annual
	}
	return OneTime
}

// String implements fmt.Stringer.
func (r Recurrence) String() string {
	if r == Annual {
		return config.RecurrenceAnnual
	}
	return config.RecurrenceOneTime
}

// Anchor is a civil date (no time-of-day) defining when an event happens.
// The zero value is not a valid anchor; use NewAnchor or ParseAnchor.
type Anchor struct {
	Year  int
	Month time.Month
	Day   int

	// YearKnown is false for vCard style --MM-DD values. Such anchors only make
	// sense with Annual recurrence.
	YearKnown bool
}

// NewAnchor validates the civil date and returns an anchor with a known year.
func NewAnchor(year int, month time.Month, day int) (Anchor, error) {
	if month < time.January || month > time.December {
		return Anchor{}, fmt.Errorf("%w: month %d out of range", ErrInvalidAnchor, month)
	}
	// time.Date normalises overflowing days, so a round trip detects impossible dates.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Anchor{}, fmt.Errorf("%w: %04d-%02d-%02d is not a calendar date", ErrInvalidAnchor, year, month, day)
	}
	return Anchor{Year: year, Month: month, Day: day, YearKnown: true}, nil
}

// AnchorOf strips the time-of-day of t, keeping its own calendar date.
func AnchorOf(t time.Time) Anchor {
	y, m, d := t.Date()
	return Anchor{Year: y, Month: m, Day: d, YearKnown: true}
}

// ParseAnchor handles the date layouts accepted for stored dates and vCard imports.
func ParseAnchor(value string) (Anchor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Anchor{}, fmt.Errorf("%w: empty value", ErrInvalidAnchor)
	}

	// Full dates (Year known)
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return AnchorOf(t), nil
		}
	}

	// Truncated dates (Year unknown). Parse against a leap year so --02-29 survives.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			a, err := NewAnchor(config.DefaultLeapYear, t.Month(), t.Day())
			if err != nil {
				return Anchor{}, err
			}
			a.YearKnown = false
			return a, nil
		}
	}

	return Anchor{}, fmt.Errorf("%w: %s %q", ErrInvalidAnchor, config.ErrDateParse, value)
}

// IsZero reports whether the anchor was never initialised.
func (a Anchor) IsZero() bool {
	return a.Month == 0 && a.Day == 0
}

// Validate checks an anchor against the recurrence it will be used with.
func (a Anchor) Validate(r Recurrence) error {
	if a.IsZero() {
		return fmt.Errorf("%w: empty anchor", ErrInvalidAnchor)
	}
	if !a.YearKnown && r == OneTime {
		return fmt.Errorf("%w: %s", ErrInvalidAnchor, config.ErrAnchorNoYear)
	}
	return nil
}

// In returns midnight of the anchor day in loc.
func (a Anchor) In(loc *time.Location) time.Time {
	return time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, loc)
}

// String renders the anchor the way it is stored.
func (a Anchor) String() string {
	if !a.YearKnown {
		return fmt.Sprintf("--%02d-%02d", int(a.Month), a.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", a.Year, int(a.Month), a.Day)
}
