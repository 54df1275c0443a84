package calendar_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-valentine/internal/calendar"
	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func annual(title, date string) content.SpecialDate {
	return content.SpecialDate{Title: title, EventDate: date, Icon: config.DefaultIcon, IsRecurring: true}
}

func TestRender_Empty(t *testing.T) {
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}

	ics, err := gen.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(ics), "empty feeds stay valid")
}

func TestRender_GeneratesYearRange(t *testing.T) {
	// Current Date: 2025-01-01. Anniversary first celebrated 2019-12-31.
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Anniversary", "2019-12-31")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20241231", "Should include previous year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20251231", "Should include current year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20261231", "Should include next year")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
	assert.Contains(t, icsStr, "SUMMARY:Anniversary")
	assert.Contains(t, icsStr, "CATEGORIES:"+config.CategoryRecurring)
}

func TestRender_OneTime(t *testing.T) {
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}
	d := content.SpecialDate{Title: "Paris trip", EventDate: "2025-05-01", Description: "Eiffel tower"}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{d})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Equal(t, 1, strings.Count(icsStr, "BEGIN:VEVENT"))
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250501")
	assert.Contains(t, icsStr, "DESCRIPTION:Eiffel tower")
	assert.Contains(t, icsStr, "CATEGORIES:"+config.CategoryOneTime)
}

func TestRender_StartsThisYear(t *testing.T) {
	// A date first happening on 2025-05-01 is not published for 2024.
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Wedding", "2025-05-01")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20240501")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250501")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20260501")
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRender_FutureStart(t *testing.T) {
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Someday", "2027-01-01")})
	require.NoError(t, err)
	assert.NotContains(t, string(ics), "BEGIN:VEVENT")
}

func TestRender_LeapDay(t *testing.T) {
	// 2025 is not a leap year: Feb 29 is published on March 1st.
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Leap", "--02-29")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240229")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250301")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20260301")
}

func TestRender_WithReminders(t *testing.T) {
	gen := &calendar.Generator{
		Clock:           MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		ReminderTrigger: "-P1D",
	}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Anniversary", "2020-12-04")})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VALARM", "ICS should contain an alarm component")
	assert.Contains(t, icsStr, "TRIGGER:-P1D", "Alarm trigger should match configuration")
	assert.Contains(t, icsStr, "ACTION:DISPLAY", "Alarm action should be DISPLAY")
}

func TestRender_FormatSummary(t *testing.T) {
	gen := &calendar.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		FormatSummary: func(d content.SpecialDate) string {
			return "♥ " + d.Title
		},
	}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Us", "2020-12-04")})
	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:♥ Us")
}

func TestRender_StableUIDs(t *testing.T) {
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}}
	dates := []content.SpecialDate{annual("Us", "2020-12-04")}

	a, err := gen.Render(context.Background(), dates)
	require.NoError(t, err)
	b, err := gen.Render(context.Background(), dates)
	require.NoError(t, err)

	assert.Equal(t, uidLines(string(a)), uidLines(string(b)))
	assert.Len(t, uidLines(string(a)), 3)
}

func TestRender_SkipsInvalidDates(t *testing.T) {
	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}}

	ics, err := gen.Render(context.Background(), []content.SpecialDate{annual("Broken", "not-a-date")})
	require.NoError(t, err)
	assert.NotContains(t, string(ics), "BEGIN:VEVENT")
}

func TestRender_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Now()}}
	_, err := gen.Render(ctx, []content.SpecialDate{annual("Us", "2020-12-04")})
	assert.Equal(t, context.Canceled, err)
}

func uidLines(ics string) []string {
	var out []string
	for _, line := range strings.Split(ics, "\r\n") {
		if strings.HasPrefix(line, "UID:") {
			out = append(out, line)
		}
	}
	return out
}
