package search

// Basis records why a direction was chosen.
type Basis int

// Bases.
const (
	BasisNone     Basis = iota // undetermined
	BasisDefault               // no boundary value visible, caller default used
	BasisBoundary              // target lies outside [first, last]
	BasisLag                   // target inside the window but not matched yet
)

// String returns the string representation of Basis
func (b Basis) String() string {
	switch b {
	case BasisDefault:
		return "default"
	case BasisBoundary:
		return "boundary"
	case BasisLag:
		return "lag"
	default:
		return "none"
	}
}

// Decision is the outcome of a DirectionPolicy.
type Decision struct {
	Direction Direction
	Basis     Basis
}

// DirectionPolicy picks the next swipe direction from the freshest window.
// Implementations must not keep state between calls; everything they may use from
// previous iterations is in State.
type DirectionPolicy[V any] interface {
	Decide(w Window[V], target Target[V], st State) Decision
}

// BoundaryPolicy compares the target against the first and last value-bearing items.
//
// When the target falls inside the window but nothing matched, the rendered window is
// assumed stale and the previous direction is repeated for up to Grace iterations.
type BoundaryPolicy[V any] struct {
	Grace int
}

// Decide implements DirectionPolicy.
func (p BoundaryPolicy[V]) Decide(w Window[V], target Target[V], st State) Decision {
	first, ok := w.First()
	if !ok {
		if st.Default == DirectionNone {
			return Decision{}
		}
		return Decision{Direction: st.Default, Basis: BasisDefault}
	}
	last, _ := w.Last()

	if target.Order(first.Value) == OrderBefore {
		return Decision{Direction: Backward, Basis: BasisBoundary}
	}
	if target.Order(last.Value) == OrderAfter {
		return Decision{Direction: Forward, Basis: BasisBoundary}
	}

	if st.Stalls >= p.Grace {
		return Decision{}
	}
	dir := st.LastDirection
	if dir == DirectionNone {
		dir = st.Default
	}
	if dir == DirectionNone {
		return Decision{}
	}
	return Decision{Direction: dir, Basis: BasisLag}
}
