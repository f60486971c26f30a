// Package picker builds ready-to-use searchers for the common virtualized views:
// year lists, month lists, calendar day grids, numeric spinners and choice lists.
package picker

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/config"
	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/metrics"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

// ParseFunc turns a textual target into a search target.
type ParseFunc[V any] func(raw string) (search.Target[V], error)

// Picker is a searcher bound to one view kind and its profile.
type Picker[V any] struct {
	Kind    string
	Profile config.Profile

	searcher   *search.Searcher[V]
	parse      ParseFunc[V]
	defaultDir search.Direction
}

// Searcher returns the underlying search engine.
func (p *Picker[V]) Searcher() *search.Searcher[V] {
	return p.searcher
}

// Select parses raw and searches for it. Profiles with itemsPerSwipe run the
// magnitude-guided variant.
func (p *Picker[V]) Select(ctx context.Context, raw string) (*search.Result[V], error) {
	target, err := p.parse(raw)
	if err != nil {
		return nil, core.ErrInvalidTarget.WithCause(err).WithDetails(map[string]interface{}{
			"view":   p.Kind,
			"target": raw,
		})
	}
	if p.Profile.ItemsPerSwipe > 0 {
		return p.searcher.SearchGuided(ctx, target, p.defaultDir, p.Profile.ItemsPerSwipe)
	}
	return p.searcher.Search(ctx, target, p.defaultDir)
}

// Outcome is the kind-independent summary of a successful selection.
type Outcome struct {
	Kind           string        `json:"kind"`
	Target         string        `json:"target"`
	Label          string        `json:"label"`
	Index          int           `json:"index"`
	Iterations     int           `json:"iterations"`
	Gestures       int           `json:"gestures"`
	CoarseGestures int           `json:"coarseGestures"`
	FineGestures   int           `json:"fineGestures"`
	FailedGestures int           `json:"failedGestures"`
	Duration       time.Duration `json:"duration"`
}

func outcomeOf[V any](kind, target string, r *search.Result[V]) *Outcome {
	return &Outcome{
		Kind:           kind,
		Target:         target,
		Label:          r.Item.Label(),
		Index:          r.Index,
		Iterations:     r.Iterations,
		Gestures:       r.Gestures,
		CoarseGestures: r.CoarseGestures,
		FineGestures:   r.FineGestures,
		FailedGestures: r.FailedGestures,
		Duration:       r.Duration,
	}
}

func run[V any](ctx context.Context, p *Picker[V], err error, raw string) (*Outcome, error) {
	if err != nil {
		return nil, err
	}
	res, err := p.Select(ctx, raw)
	if err != nil {
		return nil, err
	}
	return outcomeOf(p.Kind, raw, res), nil
}

// Select resolves the profile of kind from cfg, builds the matching picker on dev and
// selects value. Kinds without a built-in profile are treated as choice lists.
func Select(ctx context.Context, dev search.Device, cfg *config.Config, kind, value string, m *metrics.Metrics) (*Outcome, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	prof, err := cfg.Profile(kind)
	if err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}

	switch kind {
	case config.ViewYear:
		p, err := Year(dev, prof, m)
		return run(ctx, p, err, value)
	case config.ViewMonth:
		p, err := Month(dev, prof, m)
		return run(ctx, p, err, value)
	case config.ViewCalendarDay:
		p, err := CalendarDay(dev, prof, m)
		return run(ctx, p, err, value)
	case config.ViewSpinner:
		p, err := Spinner(dev, prof, m)
		return run(ctx, p, err, value)
	default:
		p, err := Choice(dev, kind, prof, m)
		return run(ctx, p, err, value)
	}
}

// base maps the shared profile fields onto a search config.
func base[V any](kind string, prof config.Profile, m *metrics.Metrics) (search.Config[V], search.Direction, error) {
	axis, err := search.ParseAxis(prof.Axis)
	if err != nil {
		return search.Config[V]{}, search.DirectionNone, core.ErrInvalidConfig.WithCause(err)
	}
	dir, err := search.ParseDirection(prof.DefaultDirection)
	if err != nil {
		return search.Config[V]{}, search.DirectionNone, core.ErrInvalidConfig.WithCause(err)
	}
	return search.Config[V]{
		Name:            kind,
		Axis:            axis,
		SwipeRatio:      prof.SwipeRatio,
		JumpRatio:       prof.JumpRatio,
		GestureDuration: prof.Duration,
		MaxIterations:   prof.MaxIterations,
		Grace:           prof.Grace,
		Settle:          prof.Settle,
		Metrics:         m,
	}, dir, nil
}

func build[V any](dev search.Device, kind string, prof config.Profile, cfg search.Config[V], dir search.Direction, parse ParseFunc[V]) (*Picker[V], error) {
	s, err := search.New(dev, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s picker: %w", kind, err)
	}
	return &Picker[V]{
		Kind:       kind,
		Profile:    prof,
		searcher:   s,
		parse:      parse,
		defaultDir: dir,
	}, nil
}
