// Package executor runs a selection on one or more device sessions, collecting a
// result per device.
package executor

import (
	"context"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/config"
	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/logger"
	"github.com/devicelab-dev/scrollseek/pkg/metrics"
	"github.com/devicelab-dev/scrollseek/pkg/picker"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

// RunnerConfig configures a run.
type RunnerConfig struct {
	Config  *config.Config // view profiles, nil uses the built-in ones
	View    string         // view kind, e.g. "year"
	Target  string         // textual target value
	Metrics *metrics.Metrics

	Parallelism int  // Max concurrent sessions (0 = all at once)
	StopOnFail  bool // Cancel the remaining sessions on the first failure

	// Live progress callbacks
	OnDeviceStart func(deviceID string)
	OnDeviceEnd   func(result DeviceResult)
}

// DeviceResult is the outcome of the selection on one device.
type DeviceResult struct {
	DeviceID string
	Status   core.SearchStatus
	Outcome  *picker.Outcome // nil unless Status is StatusSucceeded
	Err      error
	Duration time.Duration
}

// RunResult aggregates the device results of a run.
type RunResult struct {
	Status    core.SearchStatus
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
	Duration  time.Duration
	Results   []DeviceResult
}

// Runner runs the selection on a single device session.
type Runner struct {
	config RunnerConfig
	device search.Device
	id     string
}

// New creates a new Runner.
func New(deviceID string, device search.Device, cfg RunnerConfig) *Runner {
	return &Runner{
		config: cfg,
		device: device,
		id:     deviceID,
	}
}

// Run executes the selection. Search failures are reported in the result, not as an error.
func (r *Runner) Run(ctx context.Context) *DeviceResult {
	if r.config.OnDeviceStart != nil {
		r.config.OnDeviceStart(r.id)
	}

	cfg := r.config.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	log := logger.WithFields(logger.Fields{"device": r.id, "view": r.config.View, "target": r.config.Target})
	start := time.Now()
	out, err := picker.Select(ctx, r.device, cfg, r.config.View, r.config.Target, r.config.Metrics)
	result := DeviceResult{
		DeviceID: r.id,
		Status:   core.StatusOf(err),
		Outcome:  out,
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		log.WithField("status", result.Status.String()).Warnf("selection failed: %v", err)
	} else {
		log.WithField("gestures", out.Gestures).Infof("selected %q", out.Label)
	}

	if r.config.OnDeviceEnd != nil {
		r.config.OnDeviceEnd(result)
	}
	return &result
}

// buildRunResult aggregates device results into a run result.
func buildRunResult(results []DeviceResult, wallClock time.Duration) *RunResult {
	result := &RunResult{
		Total:    len(results),
		Results:  results,
		Duration: wallClock,
	}

	for _, dr := range results {
		switch dr.Status {
		case core.StatusSucceeded:
			result.Succeeded++
		case core.StatusFailed:
			result.Failed++
		case core.StatusCancelled:
			result.Cancelled++
		}
	}

	// Determine overall status
	switch {
	case result.Failed > 0:
		result.Status = core.StatusFailed
	case result.Cancelled > 0:
		result.Status = core.StatusCancelled
	default:
		result.Status = core.StatusSucceeded
	}
	return result
}
