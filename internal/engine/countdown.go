package engine

import "time"

// Millisecond divisors used by the countdown decomposition.
const (
	msPerDay    int64 = 86_400_000
	msPerHour   int64 = 3_600_000
	msPerMinute int64 = 60_000
	msPerSecond int64 = 1_000
)

// Countdown is a point-in-time breakdown of the time remaining until a target.
// It is derived on every tick and never stored.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	IsPast  bool  `json:"is_past"`
	IsToday bool  `json:"is_today"`
}

// TotalSeconds folds the breakdown back into whole seconds.
func (c Countdown) TotalSeconds() int64 {
	return c.Days*86_400 + c.Hours*3_600 + c.Minutes*60 + c.Seconds
}

// ComputeCountdown turns (target, now) into a Countdown.
//
// IsToday compares calendar dates only. A target whose day has passed yields an
// all-zero snapshot with IsPast set. A target later today counts down normally;
// one already behind now on the same day reports zero with IsToday set.
func ComputeCountdown(target, now time.Time) Countdown {
	targetDay := civil(target)
	today := civil(now)

	isToday := targetDay == today
	isPast := !isToday && targetDay.before(today)

	diff := target.Sub(now).Milliseconds()
	if diff <= 0 && !isToday {
		return Countdown{IsPast: true}
	}
	if diff < 0 {
		diff = 0
	}

	return Countdown{
		Days:    diff / msPerDay,
		Hours:   (diff % msPerDay) / msPerHour,
		Minutes: (diff % msPerHour) / msPerMinute,
		Seconds: (diff % msPerMinute) / msPerSecond,
		IsPast:  isPast,
		IsToday: isToday,
	}
}

// civilDate is a comparable (year, month, day) triple.
type civilDate struct {
	y int
	m time.Month
	d int
}

func civil(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

func (c civilDate) before(o civilDate) bool {
	if c.y != o.y {
		return c.y < o.y
	}
	if c.m != o.m {
		return c.m < o.m
	}
	return c.d < o.d
}
