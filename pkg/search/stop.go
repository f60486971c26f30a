package search

// StopCondition reports the item to act on when the target is visible and actionable.
type StopCondition[V any] func(w Window[V], target Target[V]) (Observation[V], bool)

// FirstMatch returns the first actionable item equal to the target in natural order,
// so duplicate labels always resolve to the same item.
func FirstMatch[V any](w Window[V], target Target[V]) (Observation[V], bool) {
	for _, o := range w.Observations {
		if target.Matches(o.Value) && Actionable(o.Item) {
			return o, true
		}
	}
	return Observation[V]{}, false
}

// Actionable reports whether an item can receive a tap.
func Actionable(it Item) bool {
	return it.Enabled && !it.Bounds.Empty()
}
