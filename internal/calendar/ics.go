package calendar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// Generator renders special dates as an iCalendar feed.
type Generator struct {
	Clock engine.Clock

	// FormatSummary allows callers to inject localized event titles.
	FormatSummary func(d content.SpecialDate) string

	// ReminderTrigger is an RFC 5545 duration (e.g. "-PT9H"). Empty disables alarms.
	ReminderTrigger string
}

type renderStats struct {
	dates, events, today int
}

// Render builds the ICS document. An empty date list yields a minimal valid VCALENDAR.
func (g *Generator) Render(ctx context.Context, dates []content.SpecialDate) ([]byte, error) {
	clock := g.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}

	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Dates are civil days in local time; only DTSTAMP is an absolute instant.
	now := clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	var stats renderStats
	for _, d := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		anchor, err := engine.ParseAnchor(d.EventDate)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyValue, d.EventDate)
			continue
		}
		stats.dates++

		events, isToday := g.createEvents(d, anchor, now, dtStampProp)
		if isToday {
			stats.today++
			slog.Info(config.MsgDateToday,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyName, d.Title)
		}
		for _, e := range events {
			cal.Children = append(cal.Children, e.Component)
		}
		stats.events += len(events)
	}

	if len(cal.Children) == 0 {
		logRendered(stats)
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	logRendered(stats)
	return buf.Bytes(), nil
}

func logRendered(stats renderStats) {
	slog.Info(config.MsgICSRendered,
		config.LogKeyComponent, config.CompCalendar,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.dates),
			slog.Int(config.LogKeyEvents, stats.events),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// eventYears lists the years a date is published for. Annual dates cover the
// previous, current and next year so calendar clients can scroll without a
// re-sync; years before a known anchor year are skipped.
func eventYears(anchor engine.Anchor, r engine.Recurrence, now time.Time) []int {
	if r == engine.OneTime {
		return []int{anchor.Year}
	}
	current := now.Year()
	years := make([]int, 0, 3)
	for _, y := range []int{current - 1, current, current + 1} {
		if anchor.YearKnown && y < anchor.Year {
			continue
		}
		years = append(years, y)
	}
	return years
}

func (g *Generator) createEvents(d content.SpecialDate, anchor engine.Anchor, now time.Time, dtStamp *ical.Prop) ([]*ical.Event, bool) {
	recurrence := d.OccurrenceRecurrence()
	loc := now.Location()
	uidBase := uidFor(d.Title, anchor)

	summary := d.Title
	if g.FormatSummary != nil {
		summary = g.FormatSummary(d)
	}

	category := config.CategoryOneTime
	if recurrence == engine.Annual {
		category = config.CategoryRecurring
	}

	todayYear, todayMonth, todayDay := now.Date()
	isToday := false

	var events []*ical.Event
	for _, y := range eventYears(anchor, recurrence, now) {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropCategories, category)
		if d.Description != "" {
			event.Props.SetText(config.PropDescription, d.Description)
		}
		event.Props.Set(dtStamp)

		// Feb 29 rolls to Mar 1 in non-leap years, as on the countdown page.
		eventDate := time.Date(y, anchor.Month, anchor.Day, 0, 0, 0, 0, loc)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if g.ReminderTrigger != "" {
			addAlarm(event, g.ReminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

// uidFor derives a UID stable across refreshes.
func uidFor(title string, anchor engine.Anchor) string {
	input := fmt.Sprintf(config.FormatHashInput, title, anchor.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
