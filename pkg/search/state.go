package search

// State is the per-call bookkeeping of one search. It is created by Search, threaded
// through every step by value and dropped when the call returns.
type State struct {
	Default        Direction // caller-supplied fallback direction
	Iterations     int       // windows observed by the fine loop
	Gestures       int       // coarse + fine, including failed ones
	CoarseGestures int
	FineGestures   int
	FailedGestures int
	LastDirection  Direction
	Stalls         int      // consecutive lag decisions
	LastWindow     []string // labels of the most recent window
}

func (st State) details() map[string]interface{} {
	return map[string]interface{}{
		"iterations":      st.Iterations,
		"gestures":        st.Gestures,
		"coarse_gestures": st.CoarseGestures,
		"fine_gestures":   st.FineGestures,
		"failed_gestures": st.FailedGestures,
		"last_direction":  st.LastDirection.String(),
		"window":          st.LastWindow,
	}
}
