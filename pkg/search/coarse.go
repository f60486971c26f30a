package search

// CoarseEstimator sizes the batch of unchecked jump gestures of the guided variant.
type CoarseEstimator[V any] struct {
	Distance Distance[V]
}

// EstimateJumps returns floor(|distance(current, target)| / itemsPerSwipe).
func (e CoarseEstimator[V]) EstimateJumps(current, target V, itemsPerSwipe int) int {
	if e.Distance == nil || itemsPerSwipe <= 0 {
		return 0
	}
	d := e.Distance(current, target)
	if d < 0 {
		d = -d
	}
	return d / itemsPerSwipe
}
