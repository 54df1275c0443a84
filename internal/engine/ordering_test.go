package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderedItem struct {
	name  string
	order int
}

func (o orderedItem) Order() int { return o.order }

type datedItem struct {
	name       string
	anchor     Anchor
	recurrence Recurrence
}

func (d datedItem) OccurrenceAnchor() Anchor         { return d.anchor }
func (d datedItem) OccurrenceRecurrence() Recurrence { return d.recurrence }

func TestSortByDisplayOrder_Stable(t *testing.T) {
	items := []orderedItem{{"c", 2}, {"a", 0}, {"b1", 1}, {"b2", 1}}

	SortByDisplayOrder(items)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.name)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, names)
}

func TestNextDisplayOrder(t *testing.T) {
	assert.Equal(t, 0, NextDisplayOrder(0))
	assert.Equal(t, 3, NextDisplayOrder(3))
	assert.Equal(t, 0, NextDisplayOrder(-1))
}

func TestSortByAnchor_BothDirections(t *testing.T) {
	items := []datedItem{
		{name: "middle", anchor: mustAnchor(t, "2024-05-01")},
		{name: "last", anchor: mustAnchor(t, "2025-01-01")},
		{name: "first", anchor: mustAnchor(t, "2023-12-31")},
	}
	key := func(d datedItem) Anchor { return d.anchor }

	SortByAnchor(items, key, true)
	assert.Equal(t, "first", items[0].name)
	assert.Equal(t, "last", items[2].name)

	SortByAnchor(items, key, false)
	assert.Equal(t, "last", items[0].name)
	assert.Equal(t, "first", items[2].name)
}

func TestGroupByYear(t *testing.T) {
	items := []datedItem{
		{name: "b", anchor: mustAnchor(t, "2025-03-01")},
		{name: "a", anchor: mustAnchor(t, "2024-02-14")},
		{name: "c", anchor: mustAnchor(t, "2025-07-09")},
	}

	groups := GroupByYear(items, func(d datedItem) Anchor { return d.anchor })

	require.Len(t, groups, 2)
	assert.Equal(t, 2024, groups[0].Year)
	assert.Len(t, groups[0].Items, 1)
	assert.Equal(t, 2025, groups[1].Year)
	assert.Equal(t, "b", groups[1].Items[0].name)
	assert.Equal(t, "c", groups[1].Items[1].name)

	assert.Empty(t, GroupByYear([]datedItem{}, func(d datedItem) Anchor { return d.anchor }))
}

func TestUpcomingOf_AndNextEvent(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	items := []datedItem{
		{name: "first date", anchor: mustAnchor(t, "2024-01-10"), recurrence: OneTime},
		{name: "anniversary", anchor: mustAnchor(t, "2024-12-04"), recurrence: Annual},
		{name: "birthday", anchor: mustAnchor(t, "1995-07-01"), recurrence: Annual},
		{name: "trip", anchor: mustAnchor(t, "2025-07-01"), recurrence: OneTime},
	}

	upcoming := UpcomingOf(items, now)
	require.Len(t, upcoming, 4)

	names := make([]string, 0, len(upcoming))
	for _, u := range upcoming {
		names = append(names, u.Item.name)
	}
	assert.Equal(t, []string{"first date", "birthday", "trip", "anniversary"}, names,
		"Sorted by next occurrence; same-day entries keep display order")

	assert.True(t, upcoming[0].Countdown.IsPast)
	assert.Equal(t, int64(15), upcoming[1].Countdown.Days)

	hero, ok := NextEvent(upcoming)
	require.True(t, ok)
	assert.Equal(t, "birthday", hero.Item.name, "The hero skips past one-time dates")
}

func TestNextEvent_TodayWins(t *testing.T) {
	now := time.Date(2025, 2, 14, 21, 0, 0, 0, time.UTC)
	items := []datedItem{
		{name: "valentine", anchor: mustAnchor(t, "2024-02-14"), recurrence: Annual},
		{name: "later", anchor: mustAnchor(t, "2025-03-01"), recurrence: OneTime},
	}

	hero, ok := NextEvent(UpcomingOf(items, now))
	require.True(t, ok)
	assert.Equal(t, "valentine", hero.Item.name)
	assert.True(t, hero.Countdown.IsToday)
}

func TestNextEvent_AllPast(t *testing.T) {
	now := time.Date(2025, 2, 14, 21, 0, 0, 0, time.UTC)
	items := []datedItem{{name: "old", anchor: mustAnchor(t, "2020-01-01"), recurrence: OneTime}}

	_, ok := NextEvent(UpcomingOf(items, now))
	assert.False(t, ok)
}
