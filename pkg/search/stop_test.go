package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatch_TieBreakPicksEarliest(t *testing.T) {
	w := intWindow(t, "5", "6", "7", "8", "9", "7")

	match, ok := FirstMatch(w, NewTarget(7, CompareInts))
	assert.True(t, ok)
	assert.Equal(t, 2, match.Index)
}

func TestFirstMatch_SkipsDisabled(t *testing.T) {
	w := intWindow(t, "5", "7", "9", "7")
	w.Observations[1].Item.Enabled = false

	match, ok := FirstMatch(w, NewTarget(7, CompareInts))
	assert.True(t, ok)
	assert.Equal(t, 3, match.Index)
}

func TestFirstMatch_NoMatch(t *testing.T) {
	_, ok := FirstMatch(intWindow(t, "1", "2"), NewTarget(7, CompareInts))
	assert.False(t, ok)

	_, ok = FirstMatch(Window[int]{}, NewTarget(7, CompareInts))
	assert.False(t, ok)
}

func TestActionable(t *testing.T) {
	it := intWindow(t, "1").Items[0]
	assert.True(t, Actionable(it))

	it.Enabled = false
	assert.False(t, Actionable(it))

	assert.False(t, Actionable(Item{Enabled: true}), "zero bounds")
}
