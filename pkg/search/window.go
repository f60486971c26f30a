package search

import (
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/core"
)

// DecodeFunc extracts the domain value of an item. ok is false for items that carry
// no value (headers, padding cells); a non-nil error means the label is malformed.
type DecodeFunc[V any] func(item Item) (v V, ok bool, err error)

// Observation is a value-bearing item of a window.
type Observation[V any] struct {
	Index int // position in Window.Items
	Item  Item
	Value V
}

// Window is the set of rendered children read after the latest gesture.
type Window[V any] struct {
	Items        []Item
	Observations []Observation[V]
}

// Empty reports whether nothing is rendered.
func (w Window[V]) Empty() bool {
	return len(w.Items) == 0
}

// First returns the first value-bearing item.
func (w Window[V]) First() (Observation[V], bool) {
	if len(w.Observations) == 0 {
		return Observation[V]{}, false
	}
	return w.Observations[0], true
}

// Last returns the last value-bearing item.
func (w Window[V]) Last() (Observation[V], bool) {
	if len(w.Observations) == 0 {
		return Observation[V]{}, false
	}
	return w.Observations[len(w.Observations)-1], true
}

// Labels returns the item labels for diagnostics.
func (w Window[V]) Labels() []string {
	labels := make([]string, len(w.Items))
	for i, it := range w.Items {
		labels[i] = it.Label()
	}
	return labels
}

// NewWindow decodes items. The first decode error aborts with ErrDecodeFailed.
func NewWindow[V any](items []Item, decode DecodeFunc[V]) (Window[V], error) {
	w := Window[V]{Items: items}
	for i, it := range items {
		v, ok, err := decode(it)
		if err != nil {
			return Window[V]{}, core.ErrDecodeFailed.WithCause(err).WithDetails(map[string]interface{}{
				"index": i,
				"label": it.Label(),
			})
		}
		if !ok {
			continue
		}
		w.Observations = append(w.Observations, Observation[V]{Index: i, Item: it, Value: v})
	}
	return w, nil
}

// DecodeInt reads an integer label. Blank labels carry no value.
func DecodeInt(item Item) (int, bool, error) {
	label := strings.TrimSpace(item.Label())
	if label == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(label, ",", ""))
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// DecodeTime returns a decoder parsing labels with a time layout.
// The accessibility label is preferred because calendar cells render only the day number.
func DecodeTime(layout string) DecodeFunc[time.Time] {
	return func(item Item) (time.Time, bool, error) {
		label := strings.TrimSpace(item.AccessibilityLabel)
		if label == "" {
			label = strings.TrimSpace(item.Text)
		}
		if label == "" {
			return time.Time{}, false, nil
		}
		t, err := time.Parse(layout, label)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
}

// DecodeIndex maps labels to their position in an ordered choice list.
// Labels outside the list carry no value; matching ignores case and surrounding space.
func DecodeIndex(choices []string) DecodeFunc[int] {
	index := make(map[string]int, len(choices))
	for i, c := range choices {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return func(item Item) (int, bool, error) {
		i, ok := index[strings.ToLower(strings.TrimSpace(item.Label()))]
		return i, ok, nil
	}
}
