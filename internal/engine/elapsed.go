package engine

import (
	"math"
	"time"
)

// AverageMonthDays is the fixed month length used for the "months together" figure.
// It is deliberately not calendar accurate.
const AverageMonthDays = 30.44

// Elapsed is a point-in-time breakdown of the time passed since an anchor instant.
type Elapsed struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Weeks   int64 `json:"weeks"`
	Months  int64 `json:"months"`
}

// ComputeElapsed decomposes now - anchor. Anchors in the future clamp to the zero snapshot.
func ComputeElapsed(anchor, now time.Time) Elapsed {
	diff := now.Sub(anchor)
	if diff <= 0 {
		return Elapsed{}
	}

	totalSeconds := int64(diff / time.Second)
	totalMinutes := totalSeconds / 60
	totalHours := totalMinutes / 60
	totalDays := totalHours / 24

	return Elapsed{
		Days:    totalDays,
		Hours:   totalHours % 24,
		Minutes: totalMinutes % 60,
		Seconds: totalSeconds % 60,
		Weeks:   totalDays / 7,
		Months:  int64(math.Floor(float64(totalDays) / AverageMonthDays)),
	}
}
