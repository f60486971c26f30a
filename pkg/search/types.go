// Package search locates a target item inside a virtualized view that can only be
// moved with swipe gestures and only observed through its currently rendered children.
//
// A Searcher issues one gesture at a time, re-reads the visible window after every
// gesture and recomputes the direction from that window, so an overshoot is reversed on
// the next iteration. The guided variant first issues a batch of unchecked "jump"
// gestures sized from the distance between the current and the target value.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/core"
)

// Item is one rendered child of the scrollable container.
type Item = core.ElementInfo

// Device is the narrow contract the engine needs from a driver session.
type Device interface {
	// LocateContainer resolves the swipeable view. Called once per search.
	LocateContainer(ctx context.Context) (Item, error)

	// VisibleChildren returns the currently rendered window in natural order.
	// An empty slice is a valid answer.
	VisibleChildren(ctx context.Context, container Item) ([]Item, error)

	// Swipe dispatches one gesture inside the container and returns when it completed.
	Swipe(ctx context.Context, container Item, g Gesture) error

	// Tap clicks an item. Used as the default target action and by refresh probes.
	Tap(ctx context.Context, item Item) error
}

// Direction is the way the view is moved along its scroll axis.
type Direction int

// Directions. DirectionNone means undetermined.
const (
	DirectionNone Direction = iota
	Forward                 // toward later values
	Backward                // toward earlier values
)

// String returns the string representation of Direction
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case Forward:
		return Backward
	case Backward:
		return Forward
	default:
		return DirectionNone
	}
}

// ParseDirection parses "forward", "backward" or "" (none).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "next", "down", "right":
		return Forward, nil
	case "backward", "back", "previous", "up", "left":
		return Backward, nil
	case "", "none":
		return DirectionNone, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}

// Axis is the scroll axis of a view.
type Axis int

// Axes.
const (
	Vertical Axis = iota
	Horizontal
)

// String returns the string representation of Axis
func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseAxis parses "vertical" (default) or "horizontal".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	default:
		return Vertical, fmt.Errorf("unknown axis %q", s)
	}
}

// Gesture is one swipe inside the container.
type Gesture struct {
	Direction Direction
	Axis      Axis
	Ratio     float64       // fraction of the container extent, 0 < Ratio <= 1
	Duration  time.Duration // 0 lets the driver pick
}

// Swipe returns the finger direction for the gesture. Bringing later items into view
// drags the content toward the start of the axis, so a forward vertical gesture swipes up.
func (g Gesture) Swipe() string {
	switch {
	case g.Axis == Vertical && g.Direction == Forward:
		return "up"
	case g.Axis == Vertical && g.Direction == Backward:
		return "down"
	case g.Axis == Horizontal && g.Direction == Forward:
		return "left"
	case g.Axis == Horizontal && g.Direction == Backward:
		return "right"
	}
	return ""
}

// String returns a compact description for logs.
func (g Gesture) String() string {
	return fmt.Sprintf("%s(%s %.2f)", g.Direction, g.Swipe(), g.Ratio)
}
