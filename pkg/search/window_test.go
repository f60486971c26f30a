package search

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/scrollseek/pkg/core"
)

func TestNewWindow_SkipsValuelessItems(t *testing.T) {
	w := intWindow(t, "", "1,990", "1991", "  ")

	require.Len(t, w.Items, 4)
	require.Len(t, w.Observations, 2)
	first, _ := w.First()
	last, _ := w.Last()
	assert.Equal(t, 1990, first.Value)
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, 1991, last.Value)
	assert.False(t, w.Empty())
	assert.Equal(t, []string{"", "1,990", "1991", "  "}, w.Labels())
}

func TestNewWindow_DecodeFailureIsFatal(t *testing.T) {
	items := []Item{{Text: "1"}, {Text: "two"}, {Text: "3"}}

	_, err := NewWindow(items, DecodeInt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDecodeFailed))

	var ee *core.ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.Details["index"])
	assert.Equal(t, "two", ee.Details["label"])
}

func TestWindow_EmptyHasNoBoundary(t *testing.T) {
	var w Window[int]
	assert.True(t, w.Empty())
	_, ok := w.First()
	assert.False(t, ok)
	_, ok = w.Last()
	assert.False(t, ok)
}

func TestDecodeTime_PrefersAccessibilityLabel(t *testing.T) {
	decode := DecodeTime("02 January 2006")

	v, ok, err := decode(Item{Text: "7", AccessibilityLabel: "07 March 2024"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), v)

	_, ok, err = decode(Item{})
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = decode(Item{AccessibilityLabel: "Next month"})
	assert.Error(t, err)
}

func TestDecodeIndex(t *testing.T) {
	decode := DecodeIndex([]string{"Small", "Medium", "Large", "Medium"})

	i, ok, err := decode(Item{Text: " large "})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok, _ = decode(Item{Text: "Medium"})
	assert.True(t, ok)
	assert.Equal(t, 1, i, "duplicate labels map to the first position")

	_, ok, err = decode(Item{Text: "Huge"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareDaysAndMonths(t *testing.T) {
	a := time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.January, 1, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, CompareDays(a, b))
	assert.Equal(t, 0, CompareDays(b, b.Add(time.Hour)))
	assert.Equal(t, -1, CompareMonths(a, b))
	assert.Equal(t, 1, MonthDistance(a, b))
	assert.Equal(t, 1, DayDistance(a, b))
	assert.Equal(t, -366, DayDistance(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), b))
}

func TestTargetOrder(t *testing.T) {
	target := NewTarget(7, CompareInts)
	assert.Equal(t, OrderBefore, target.Order(9))
	assert.Equal(t, OrderAt, target.Order(7))
	assert.Equal(t, OrderAfter, target.Order(5))
	assert.True(t, target.Matches(7))
}
