package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/logger"
	"github.com/devicelab-dev/scrollseek/pkg/metrics"
)

// Defaults applied by New for zero config fields.
const (
	DefaultSwipeRatio    = 0.5
	DefaultMaxIterations = 20
	DefaultGrace         = 2
)

// ActionFunc commits the selection on the matched item.
type ActionFunc func(ctx context.Context, dev Device, item Item) error

// Config holds the per-view-type override points. The loop itself never changes.
type Config[V any] struct {
	Name     string // view name for logs and metrics
	Decode   DecodeFunc[V]
	Distance Distance[V] // required by SearchGuided

	Policy DirectionPolicy[V] // default BoundaryPolicy{Grace}
	Stop   StopCondition[V]   // default FirstMatch
	Probe  RefreshProbe       // nil skips the refresh step
	Action ActionFunc         // default Device.Tap

	Axis            Axis
	SwipeRatio      float64 // fine gestures
	JumpRatio       float64 // coarse gestures, defaults to SwipeRatio
	GestureDuration time.Duration
	MaxIterations   int           // gesture budget, coarse + fine
	Grace           int           // lag iterations tolerated by BoundaryPolicy
	Settle          time.Duration // wait after every gesture

	Metrics *metrics.Metrics
}

// Result is a successful search.
type Result[V any] struct {
	Item           Item
	Value          V
	Index          int // position of Item in its window
	Status         core.SearchStatus
	Iterations     int
	Gestures       int
	CoarseGestures int
	FineGestures   int
	FailedGestures int
	Duration       time.Duration
}

// Searcher runs searches against one view session. It holds no per-call state and
// rejects a second concurrent call.
type Searcher[V any] struct {
	dev  Device
	cfg  Config[V]
	busy atomic.Bool
}

// New creates a Searcher bound to dev.
func New[V any](dev Device, cfg Config[V]) (*Searcher[V], error) {
	if dev == nil {
		return nil, core.ErrMissingRequired.WithMessage("search: device is required")
	}
	if cfg.Decode == nil {
		return nil, core.ErrMissingRequired.WithMessage("search: decoder is required")
	}
	if cfg.SwipeRatio == 0 {
		cfg.SwipeRatio = DefaultSwipeRatio
	}
	if cfg.JumpRatio == 0 {
		cfg.JumpRatio = cfg.SwipeRatio
	}
	if !validRatio(cfg.SwipeRatio) || !validRatio(cfg.JumpRatio) {
		return nil, core.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("search: swipe ratios must be in (0, 1], got %.2f/%.2f", cfg.SwipeRatio, cfg.JumpRatio))
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Grace < 0 {
		cfg.Grace = 0
	} else if cfg.Grace == 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Policy == nil {
		cfg.Policy = BoundaryPolicy[V]{Grace: cfg.Grace}
	}
	if cfg.Stop == nil {
		cfg.Stop = FirstMatch[V]
	}
	if cfg.Action == nil {
		cfg.Action = func(ctx context.Context, dev Device, item Item) error {
			return dev.Tap(ctx, item)
		}
	}
	if cfg.Name == "" {
		cfg.Name = "view"
	}
	return &Searcher[V]{dev: dev, cfg: cfg}, nil
}

func validRatio(r float64) bool {
	return r > 0 && r <= 1
}

// Config returns the effective configuration.
func (s *Searcher[V]) Config() Config[V] {
	return s.cfg
}

// Search runs the plain iterative search.
// defaultDir is used while no boundary value is visible.
func (s *Searcher[V]) Search(ctx context.Context, target Target[V], defaultDir Direction) (*Result[V], error) {
	return s.run(ctx, target, defaultDir, 0)
}

// SearchGuided runs the magnitude-guided search: one batch of jump gestures sized from
// itemsPerSwipe (items rendered per jump), then the fine loop.
func (s *Searcher[V]) SearchGuided(ctx context.Context, target Target[V], defaultDir Direction, itemsPerSwipe int) (*Result[V], error) {
	if itemsPerSwipe <= 0 {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("search: itemsPerSwipe must be positive, got %d", itemsPerSwipe))
	}
	if s.cfg.Distance == nil {
		return nil, core.ErrMissingRequired.WithMessage("search: guided search needs a distance function")
	}
	return s.run(ctx, target, defaultDir, itemsPerSwipe)
}

func (s *Searcher[V]) run(ctx context.Context, target Target[V], defaultDir Direction, itemsPerSwipe int) (*Result[V], error) {
	if target.Compare == nil {
		return nil, core.ErrMissingRequired.WithMessage("search: target comparator is required")
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, core.ErrSessionBusy
	}
	defer s.busy.Store(false)

	start := time.Now()
	s.cfg.Metrics.Begin()

	res, st, err := s.execute(ctx, target, defaultDir, itemsPerSwipe)

	elapsed := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = core.Code(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	s.cfg.Metrics.ObserveRun(s.cfg.Name, outcome, st.Gestures, elapsed)

	entry := logger.WithFields(logger.Fields{
		"view":     s.cfg.Name,
		"target":   fmt.Sprint(target.Value),
		"gestures": st.Gestures,
		"coarse":   st.CoarseGestures,
		"fine":     st.FineGestures,
	})
	if err != nil {
		entry.Warnf("search failed: %v", err)
		return nil, err
	}
	res.Duration = elapsed
	entry.Infof("search matched %q in %v", res.Item.Label(), elapsed)
	return res, nil
}

func (s *Searcher[V]) execute(ctx context.Context, target Target[V], defaultDir Direction, itemsPerSwipe int) (*Result[V], State, error) {
	st := State{Default: defaultDir}

	if err := ctx.Err(); err != nil {
		return nil, st, s.cancelled(err, st)
	}

	container, err := s.dev.LocateContainer(ctx)
	if err != nil {
		return nil, st, core.ErrContainerNotFound.WithCause(err)
	}

	if itemsPerSwipe > 0 {
		st, err = s.coarse(ctx, container, target, itemsPerSwipe, st)
		if err != nil {
			return nil, st, err
		}
	}

	for {
		var res *Result[V]
		st, res, err = s.step(ctx, container, target, st)
		if err != nil || res != nil {
			return res, st, err
		}
	}
}

// coarse runs the unchecked jump phase. It observes the window once to get the
// current value and direction and skips itself when the target is already actionable.
func (s *Searcher[V]) coarse(ctx context.Context, container Item, target Target[V], itemsPerSwipe int, st State) (State, error) {
	w, err := s.observe(ctx, container)
	if err != nil {
		return st, err
	}
	st.LastWindow = w.Labels()

	if _, ok := s.cfg.Stop(w, target); ok {
		return st, nil
	}
	decision := s.cfg.Policy.Decide(w, target, st)
	if decision.Basis != BasisBoundary {
		return st, nil
	}
	current, _ := w.First()

	estimator := CoarseEstimator[V]{Distance: s.cfg.Distance}
	jumps := estimator.EstimateJumps(current.Value, target.Value, itemsPerSwipe)
	if jumps > s.cfg.MaxIterations {
		jumps = s.cfg.MaxIterations
	}
	logger.Debug("[%s] coarse phase: %d jumps %s from %v", s.cfg.Name, jumps, decision.Direction, current.Value)

	for i := 0; i < jumps; i++ {
		if err := ctx.Err(); err != nil {
			return st, s.cancelled(err, st)
		}
		st, err = s.swipe(ctx, container, decision.Direction, s.cfg.JumpRatio, metrics.PhaseCoarse, st)
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

// step is one iteration of the fine loop. It returns a Result on success, an error on
// any terminal failure and neither while the search continues.
func (s *Searcher[V]) step(ctx context.Context, container Item, target Target[V], st State) (State, *Result[V], error) {
	if err := ctx.Err(); err != nil {
		return st, nil, s.cancelled(err, st)
	}

	w, err := s.observe(ctx, container)
	if err != nil {
		return st, nil, err
	}
	st.Iterations++
	st.LastWindow = w.Labels()

	if match, ok := s.cfg.Stop(w, target); ok {
		if err := s.cfg.Action(context.WithoutCancel(ctx), s.dev, match.Item); err != nil {
			return st, nil, core.ErrActionFailed.WithCause(err).WithDetails(map[string]interface{}{"label": match.Item.Label()})
		}
		return st, &Result[V]{
			Item:           match.Item,
			Value:          match.Value,
			Index:          match.Index,
			Status:         core.StatusSucceeded,
			Iterations:     st.Iterations,
			Gestures:       st.Gestures,
			CoarseGestures: st.CoarseGestures,
			FineGestures:   st.FineGestures,
			FailedGestures: st.FailedGestures,
		}, nil
	}

	if st.Gestures >= s.cfg.MaxIterations {
		e := core.ErrSearchExhausted.WithDetails(st.details())
		if st.FailedGestures == st.Gestures && st.Gestures > 0 {
			e = e.WithCause(core.ErrGestureFailed)
		}
		return st, nil, e
	}

	decision := s.cfg.Policy.Decide(w, target, st)
	if decision.Basis == BasisLag {
		st.Stalls++
	} else {
		st.Stalls = 0
	}
	if decision.Direction == DirectionNone {
		return st, nil, core.ErrDirectionIndeterminate.WithDetails(st.details())
	}
	logger.Debug("[%s] iteration %d: window=%v -> %s (%s)", s.cfg.Name, st.Iterations, st.LastWindow, decision.Direction, decision.Basis)

	st, err = s.swipe(ctx, container, decision.Direction, s.cfg.SwipeRatio, metrics.PhaseFine, st)
	return st, nil, err
}

// observe runs the refresh probe, then reads and decodes the window.
func (s *Searcher[V]) observe(ctx context.Context, container Item) (Window[V], error) {
	if s.cfg.Probe != nil {
		if err := s.cfg.Probe.Refresh(ctx, s.dev, container); err != nil {
			if ctx.Err() != nil {
				return Window[V]{}, core.ErrCancelled.WithCause(ctx.Err())
			}
			return Window[V]{}, core.ErrRefreshFailed.WithCause(err)
		}
	}
	items, err := s.dev.VisibleChildren(ctx, container)
	if err != nil {
		return Window[V]{}, core.ErrElementNotFound.WithCause(err).WithMessage("read visible children")
	}
	return NewWindow(items, s.cfg.Decode)
}

// swipe dispatches one gesture and waits for the view to settle. The gesture itself is
// detached from ctx so a cancellation never interrupts a swipe half-way; a failed
// gesture still consumes budget.
func (s *Searcher[V]) swipe(ctx context.Context, container Item, dir Direction, ratio float64, phase string, st State) (State, error) {
	g := Gesture{
		Direction: dir,
		Axis:      s.cfg.Axis,
		Ratio:     ratio,
		Duration:  s.cfg.GestureDuration,
	}
	err := s.dev.Swipe(context.WithoutCancel(ctx), container, g)

	st.Gestures++
	st.LastDirection = dir
	if phase == metrics.PhaseCoarse {
		st.CoarseGestures++
	} else {
		st.FineGestures++
	}
	if err != nil {
		st.FailedGestures++
		logger.Warn("[%s] gesture %d %s failed: %v", s.cfg.Name, st.Gestures, g, err)
	}
	s.cfg.Metrics.ObserveGesture(s.cfg.Name, phase, err)

	if err := s.settle(ctx); err != nil {
		return st, s.cancelled(err, st)
	}
	return st, nil
}

func (s *Searcher[V]) settle(ctx context.Context) error {
	if s.cfg.Settle <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Searcher[V]) cancelled(cause error, st State) error {
	return core.ErrCancelled.WithCause(cause).WithDetails(st.details())
}
