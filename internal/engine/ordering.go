package engine

import (
	"cmp"
	"slices"
	"time"
)

// Ordered is implemented by list entities carrying an explicit display_order.
type Ordered interface {
	Order() int
}

// Occurring is implemented by entities that can be counted down to.
type Occurring interface {
	OccurrenceAnchor() Anchor
	OccurrenceRecurrence() Recurrence
}

// SortByDisplayOrder sorts in place, ascending. Ties keep their incoming order.
func SortByDisplayOrder[T Ordered](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(a.Order(), b.Order())
	})
}

// NextDisplayOrder is the order assigned to a newly appended item: the current count.
// Gaps left by deletions are never filled.
func NextDisplayOrder(count int) int {
	if count < 0 {
		return 0
	}
	return count
}

// SortByAnchor sorts in place by a derived date, ascending or descending. Stable.
func SortByAnchor[T any](items []T, key func(T) Anchor, ascending bool) {
	slices.SortStableFunc(items, func(a, b T) int {
		c := compareAnchors(key(a), key(b))
		if !ascending {
			return -c
		}
		return c
	})
}

// YearGroup holds the items of one calendar year.
type YearGroup[T any] struct {
	Year  int `json:"year"`
	Items []T `json:"items"`
}

// GroupByYear buckets items by the year of key, years ascending. Items keep their
// incoming order inside a bucket.
func GroupByYear[T any](items []T, key func(T) Anchor) []YearGroup[T] {
	index := make(map[int]int)
	var groups []YearGroup[T]
	for _, it := range items {
		y := key(it).Year
		i, ok := index[y]
		if !ok {
			i = len(groups)
			index[y] = i
			groups = append(groups, YearGroup[T]{Year: y})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	slices.SortFunc(groups, func(a, b YearGroup[T]) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return groups
}

// Upcoming pairs an entity with its resolved occurrence and countdown.
type Upcoming[T any] struct {
	Item      T         `json:"item"`
	Next      time.Time `json:"next_occurrence"`
	Countdown Countdown `json:"countdown"`
}

// UpcomingOf resolves every item against now and sorts by next occurrence. Stable,
// so items sharing a day keep their display order.
func UpcomingOf[T Occurring](items []T, now time.Time) []Upcoming[T] {
	out := make([]Upcoming[T], 0, len(items))
	for _, it := range items {
		next := ResolveOccurrence(it.OccurrenceAnchor(), it.OccurrenceRecurrence(), now)
		out = append(out, Upcoming[T]{
			Item:      it,
			Next:      next,
			Countdown: ComputeCountdown(next, now),
		})
	}
	slices.SortStableFunc(out, func(a, b Upcoming[T]) int {
		return a.Next.Compare(b.Next)
	})
	return out
}

// NextEvent picks the hero entry: the first one that is today or not yet past.
func NextEvent[T any](upcoming []Upcoming[T]) (Upcoming[T], bool) {
	for _, u := range upcoming {
		if u.Countdown.IsToday || !u.Countdown.IsPast {
			return u, true
		}
	}
	var zero Upcoming[T]
	return zero, false
}

func compareAnchors(a, b Anchor) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Month, b.Month); c != 0 {
		return c
	}
	return cmp.Compare(a.Day, b.Day)
}
