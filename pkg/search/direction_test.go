package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/scrollseek/pkg/core"
)

func intWindow(t *testing.T, labels ...string) Window[int] {
	t.Helper()
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Item{
			ID:      l,
			Text:    l,
			Enabled: true,
			Bounds:  core.Bounds{X: 0, Y: i * 100, Width: 1080, Height: 100},
		}
	}
	w, err := NewWindow(items, DecodeInt)
	require.NoError(t, err)
	return w
}

func TestBoundaryPolicy_WindowFiveToNine(t *testing.T) {
	w := intWindow(t, "5", "6", "7", "8", "9")
	policy := BoundaryPolicy[int]{Grace: 2}

	_, ok := FirstMatch(w, NewTarget(7, CompareInts))
	assert.True(t, ok, "target 7 should satisfy the stop condition")

	tests := []struct {
		target int
		want   Direction
	}{
		{3, Backward},
		{12, Forward},
		{4, Backward},
		{10, Forward},
	}
	for _, tt := range tests {
		d := policy.Decide(w, NewTarget(tt.target, CompareInts), State{})
		assert.Equal(t, tt.want, d.Direction, "target %d", tt.target)
		assert.Equal(t, BasisBoundary, d.Basis, "target %d", tt.target)
	}
}

func TestBoundaryPolicy_NoBoundaryUsesDefault(t *testing.T) {
	policy := BoundaryPolicy[int]{Grace: 2}
	target := NewTarget(7, CompareInts)

	d := policy.Decide(Window[int]{}, target, State{Default: Forward})
	assert.Equal(t, Decision{Direction: Forward, Basis: BasisDefault}, d)

	d = policy.Decide(Window[int]{}, target, State{})
	assert.Equal(t, DirectionNone, d.Direction)

	// Items rendered but none carries a value.
	blank := intWindow(t, "", " ")
	d = policy.Decide(blank, target, State{Default: Backward})
	assert.Equal(t, Decision{Direction: Backward, Basis: BasisDefault}, d)
}

func TestBoundaryPolicy_LagKeepsPreviousDirection(t *testing.T) {
	w := intWindow(t, "5", "6", "8", "9")
	policy := BoundaryPolicy[int]{Grace: 2}
	target := NewTarget(7, CompareInts)

	d := policy.Decide(w, target, State{LastDirection: Backward, Default: Forward})
	assert.Equal(t, Decision{Direction: Backward, Basis: BasisLag}, d)

	d = policy.Decide(w, target, State{LastDirection: Backward, Stalls: 1})
	assert.Equal(t, Backward, d.Direction)

	d = policy.Decide(w, target, State{LastDirection: Backward, Stalls: 2})
	assert.Equal(t, DirectionNone, d.Direction, "grace exhausted")

	d = policy.Decide(w, target, State{Default: Forward})
	assert.Equal(t, Decision{Direction: Forward, Basis: BasisLag}, d, "no previous direction falls back to default")

	d = policy.Decide(w, target, State{})
	assert.Equal(t, DirectionNone, d.Direction)
}

func TestBoundaryPolicy_RecomputesAfterOvershoot(t *testing.T) {
	policy := BoundaryPolicy[int]{Grace: 2}
	target := NewTarget(15, CompareInts)

	d := policy.Decide(intWindow(t, "20", "21", "22"), target, State{LastDirection: Forward})
	assert.Equal(t, Backward, d.Direction, "previous direction must not be continued past the target")
}

func TestBasisString(t *testing.T) {
	assert.Equal(t, "none", BasisNone.String())
	assert.Equal(t, "default", BasisDefault.String())
	assert.Equal(t, "boundary", BasisBoundary.String())
	assert.Equal(t, "lag", BasisLag.String())
}
