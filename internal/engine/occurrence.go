package engine

import "time"

// ResolveOccurrence maps an anchor to the concrete target instant relative to now.
//
// One-time anchors resolve to their own day. Annual anchors resolve to this
// year's month/day when that day is not before now's calendar day, and to next
// year's otherwise. Both are interpreted in now's location.
//
// Feb 29 in a non-leap year rolls forward to Mar 1 (time.Date normalisation).
func ResolveOccurrence(anchor Anchor, recurrence Recurrence, now time.Time) time.Time {
	loc := now.Location()

	if recurrence == OneTime {
		return anchor.In(loc)
	}

	currentYear := now.Year()
	candidate := time.Date(currentYear, anchor.Month, anchor.Day, 0, 0, 0, 0, loc)

	if candidate.Before(startOfDay(now)) {
		candidate = time.Date(currentYear+1, anchor.Month, anchor.Day, 0, 0, 0, 0, loc)
	}
	return candidate
}

// startOfDay strips the time-of-day while keeping the location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
