// Package mock provides a simulated virtualized view for testing without a real device.
//
// The view holds a full list of labels but renders only PageSize of them starting at
// an offset. Swipes move the offset by Ratio*PageSize items (times an optional
// per-gesture scale, to simulate imprecise actuation), clamped to the list ends.
package mock

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

const (
	rowHeight      = 100
	containerWidth = 1080
	sentinelID     = "sentinel"
)

// Config configures the simulated view.
type Config struct {
	// Labels is the full list; only a page of it is rendered at a time.
	Labels []string
	// PageSize is the number of items rendered at once.
	PageSize int
	// Start is the initial offset of the window.
	Start int
	// Scale returns the actuation error of gesture n (1-indexed); nil means exact.
	Scale func(n int) float64
	// FailOnGesture makes gesture n fail without moving. 0 = never fail.
	FailOnGesture map[int]bool
	// OnGesture runs after gesture n moved the view.
	OnGesture func(n int)
	// Disabled lists item indexes rendered but not enabled.
	Disabled map[int]bool
	// Blank renders an empty window regardless of the offset.
	Blank bool
	// Sentinel prepends a value-less sentinel item to every window.
	Sentinel bool
	// StaleUntilTap keeps rendering the window of the last committed offset until
	// any item is tapped, like a view that only relabels after an interaction.
	StaleUntilTap bool
	// GestureDelay adds artificial delay per gesture.
	GestureDelay time.Duration
}

// View is a simulated scrollable container implementing search.Device.
type View struct {
	Config Config

	mu        sync.Mutex
	offset    int
	committed int
	gestures  []search.Gesture
	taps      []int
}

// New creates a new simulated view.
func New(cfg Config) *View {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	v := &View{Config: cfg}
	v.offset = v.clamp(cfg.Start)
	v.committed = v.offset
	return v
}

// NumberedLabels returns "from".."to" inclusive.
func NumberedLabels(from, to int) []string {
	labels := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		labels = append(labels, strconv.Itoa(i))
	}
	return labels
}

// LocateContainer implements search.Device.
func (v *View) LocateContainer(_ context.Context) (search.Item, error) {
	return search.Item{
		ID:      "mock-container",
		Class:   "androidx.recyclerview.widget.RecyclerView",
		Visible: true,
		Enabled: true,
		Bounds:  core.Bounds{X: 0, Y: 0, Width: containerWidth, Height: v.Config.PageSize * rowHeight},
	}, nil
}

// VisibleChildren implements search.Device.
func (v *View) VisibleChildren(_ context.Context, _ search.Item) ([]search.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.Config.Blank {
		return nil, nil
	}

	offset := v.offset
	if v.Config.StaleUntilTap {
		offset = v.committed
	}

	var items []search.Item
	if v.Config.Sentinel {
		items = append(items, search.Item{
			ID:      sentinelID,
			Visible: true,
			Enabled: true,
			Bounds:  core.Bounds{X: 0, Y: 0, Width: containerWidth, Height: rowHeight / 2},
		})
	}
	end := offset + v.Config.PageSize
	if end > len(v.Config.Labels) {
		end = len(v.Config.Labels)
	}
	for i := offset; i < end; i++ {
		row := i - offset
		items = append(items, search.Item{
			ID:      fmt.Sprintf("item-%d", i),
			Text:    v.Config.Labels[i],
			Visible: true,
			Enabled: !v.Config.Disabled[i],
			Bounds:  core.Bounds{X: 0, Y: row * rowHeight, Width: containerWidth, Height: rowHeight},
			Attributes: map[string]string{
				"index": strconv.Itoa(i),
			},
		})
	}
	return items, nil
}

// Swipe implements search.Device.
func (v *View) Swipe(_ context.Context, _ search.Item, g search.Gesture) error {
	v.mu.Lock()
	v.gestures = append(v.gestures, g)
	n := len(v.gestures)

	if v.Config.GestureDelay > 0 {
		time.Sleep(v.Config.GestureDelay)
	}

	if v.Config.FailOnGesture[n] {
		v.mu.Unlock()
		return fmt.Errorf("mock failure on gesture %d", n)
	}

	scale := 1.0
	if v.Config.Scale != nil {
		scale = v.Config.Scale(n)
	}
	step := int(math.Round(g.Ratio * float64(v.Config.PageSize) * scale))
	switch g.Direction {
	case search.Forward:
		v.offset = v.clamp(v.offset + step)
	case search.Backward:
		v.offset = v.clamp(v.offset - step)
	}
	hook := v.Config.OnGesture
	v.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return nil
}

// Tap implements search.Device.
func (v *View) Tap(_ context.Context, item search.Item) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.committed = v.offset
	if item.ID == sentinelID {
		v.taps = append(v.taps, -1)
		return nil
	}
	idx, err := strconv.Atoi(item.Attributes["index"])
	if err != nil {
		return fmt.Errorf("tap on unknown item %q", item.ID)
	}
	v.taps = append(v.taps, idx)
	return nil
}

// Offset returns the index of the first rendered item.
func (v *View) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Gestures returns the gestures received so far.
func (v *View) Gestures() []search.Gesture {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]search.Gesture(nil), v.gestures...)
}

// Directions returns the direction of every gesture received so far.
func (v *View) Directions() []search.Direction {
	gestures := v.Gestures()
	dirs := make([]search.Direction, len(gestures))
	for i, g := range gestures {
		dirs[i] = g.Direction
	}
	return dirs
}

// Taps returns the tapped item indexes; -1 marks the sentinel.
func (v *View) Taps() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.taps...)
}

// IsSentinel reports whether an item is the simulated sentinel.
func IsSentinel(it search.Item) bool {
	return it.ID == sentinelID
}

func (v *View) clamp(offset int) int {
	maxOffset := len(v.Config.Labels) - v.Config.PageSize
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	if offset < 0 {
		return 0
	}
	return offset
}
