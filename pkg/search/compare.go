package search

import (
	"cmp"
	"time"
)

// Comparator orders two domain values the way cmp.Compare does.
type Comparator[V any] func(a, b V) int

// Distance returns the signed number of items from a to b.
type Distance[V any] func(a, b V) int

// Order is where the target sits relative to an observed value.
type Order int

// Orders.
const (
	OrderBefore Order = -1
	OrderAt     Order = 0
	OrderAfter  Order = 1
)

// Target is the value a search looks for together with its comparator.
type Target[V any] struct {
	Value   V
	Compare Comparator[V]
}

// NewTarget creates a Target.
func NewTarget[V any](value V, compare Comparator[V]) Target[V] {
	return Target[V]{Value: value, Compare: compare}
}

// Order reports whether the target orders before, at or after v.
func (t Target[V]) Order(v V) Order {
	switch c := t.Compare(t.Value, v); {
	case c < 0:
		return OrderBefore
	case c > 0:
		return OrderAfter
	default:
		return OrderAt
	}
}

// Matches reports whether v equals the target.
func (t Target[V]) Matches(v V) bool {
	return t.Order(v) == OrderAt
}

// CompareInts orders integers.
func CompareInts(a, b int) int {
	return cmp.Compare(a, b)
}

// IntDistance is b - a.
func IntDistance(a, b int) int {
	return b - a
}

// CompareDays orders dates by calendar day, ignoring the time of day and location.
func CompareDays(a, b time.Time) int {
	if c := cmp.Compare(a.Year(), b.Year()); c != 0 {
		return c
	}
	return cmp.Compare(a.YearDay(), b.YearDay())
}

// CompareMonths orders dates by calendar month.
func CompareMonths(a, b time.Time) int {
	return cmp.Compare(monthIndex(a), monthIndex(b))
}

// MonthDistance is the number of whole months from a to b.
func MonthDistance(a, b time.Time) int {
	return monthIndex(b) - monthIndex(a)
}

// DayDistance is the number of days from a to b.
func DayDistance(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
