package executor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

// DeviceWorker is one device session taking part in a run.
type DeviceWorker struct {
	DeviceID string
	Device   search.Device
	Cleanup  func()
}

// ParallelRunner runs the same selection on several devices at once. Each worker owns
// its own searcher, so sessions share no state.
type ParallelRunner struct {
	workers []DeviceWorker
	config  RunnerConfig
}

// NewParallelRunner creates a parallel runner with multiple device workers.
func NewParallelRunner(workers []DeviceWorker, config RunnerConfig) *ParallelRunner {
	return &ParallelRunner{
		workers: workers,
		config:  config,
	}
}

// Run executes the selection on every worker and waits for all of them. Results keep
// the worker order. Cleanup runs for every worker, including skipped ones.
func (pr *ParallelRunner) Run(ctx context.Context) (*RunResult, error) {
	if len(pr.workers) == 0 {
		return nil, fmt.Errorf("no workers available")
	}

	g, gctx := errgroup.WithContext(ctx)
	if pr.config.Parallelism > 0 {
		g.SetLimit(pr.config.Parallelism)
	}

	results := make([]DeviceResult, len(pr.workers))
	start := time.Now()

	for i, w := range pr.workers {
		i, w := i, w
		g.Go(func() error {
			if w.Cleanup != nil {
				defer w.Cleanup()
			}
			res := New(w.DeviceID, w.Device, pr.config).Run(gctx)
			results[i] = *res

			// A failure cancels gctx, which the remaining searches observe between gestures
			if pr.config.StopOnFail && res.Status == core.StatusFailed {
				return res.Err
			}
			return nil
		})
	}

	// Errors are carried per device
	_ = g.Wait()

	return buildRunResult(results, time.Since(start)), nil
}
