package search

import (
	"context"
	"fmt"
	"strings"
)

// RefreshProbe forces a view to re-render its position-bearing labels before the
// window is read. It must be safe to run when no refresh is needed.
type RefreshProbe interface {
	Refresh(ctx context.Context, dev Device, container Item) error
}

// NopProbe does nothing.
type NopProbe struct{}

// Refresh implements RefreshProbe.
func (NopProbe) Refresh(context.Context, Device, Item) error { return nil }

// SentinelProbe taps the first visible item accepted by Match.
// With no sentinel on screen it is a no-op.
type SentinelProbe struct {
	Match func(Item) bool
}

// Refresh implements RefreshProbe.
func (p SentinelProbe) Refresh(ctx context.Context, dev Device, container Item) error {
	if p.Match == nil {
		return nil
	}
	items, err := dev.VisibleChildren(ctx, container)
	if err != nil {
		return fmt.Errorf("read sentinel window: %w", err)
	}
	for _, it := range items {
		if p.Match(it) && Actionable(it) {
			if err := dev.Tap(ctx, it); err != nil {
				return fmt.Errorf("tap sentinel %q: %w", it.Label(), err)
			}
			return nil
		}
	}
	return nil
}

// FirstOfMonth matches the "day 1" cell of a calendar grid.
func FirstOfMonth(it Item) bool {
	label := strings.TrimSpace(it.Text)
	return label == "1" || label == "01"
}
