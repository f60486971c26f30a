package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/device"
	drv "github.com/devicelab-dev/scrollseek/pkg/driver/uiautomator2"
	"github.com/devicelab-dev/scrollseek/pkg/executor"
	"github.com/devicelab-dev/scrollseek/pkg/logger"
)

var selectCommand = &cli.Command{
	Name:  "select",
	Usage: "Select a value on one or more devices",
	Description: `Connect to UIAutomator2 servers, find the target in the current view and tap it.

Either point at running servers with --server, or give adb serials with --device to
forward and start the server on each device. With several devices the selection runs
on all of them in parallel.

Examples:
  scrollseek select --server http://127.0.0.1:6790 --view year --target 1994
  scrollseek select --device emulator-5554,emulator-5556 --view month --target March
  scrollseek select --server http://127.0.0.1:6790 --view day --target 2024-06-15
  scrollseek select --server http://127.0.0.1:6790 --view weekday --target Friday --container weekdays`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "UIAutomator2 server URL (repeat or comma-separate for several devices)",
		},
		&cli.StringSliceFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "ADB serial to start UIAutomator2 on (repeat or comma-separate for several devices)",
		},
		&cli.StringFlag{
			Name:     "view",
			Usage:    "View kind: year, month, day, spinner, choice or a view from the config",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "target",
			Aliases:  []string{"t"},
			Usage:    "Value to select",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "container",
			Usage: "Resource-id of the scrollable view (default: largest scrollable on screen)",
		},
		&cli.DurationFlag{
			Name:  "gesture-interval",
			Usage: "Minimum spacing between gestures on one device",
			Value: drv.DefaultGestureInterval,
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Max devices searching at once (0 = all)",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Cancel the other devices on the first failure",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print results as JSON",
		},
	},
	Action: runSelect,
}

// selectResult is the JSON form of one device result.
type selectResult struct {
	Device  string      `json:"device"`
	Status  string      `json:"status"`
	Outcome interface{} `json:"outcome,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func runSelect(c *cli.Context) error {
	servers, serials := c.StringSlice("server"), c.StringSlice("device")
	if len(servers) == 0 && len(serials) == 0 {
		return fmt.Errorf("one of --server or --device is required")
	}

	if c.String("log-file") == "" && !c.Bool("verbose") {
		if err := openLog(defaultLogPath()); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "Warning: Failed to initialize logger: %v\n", err)
		}
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	m, stopMetrics, err := startMetrics(c)
	if err != nil {
		return err
	}
	defer stopMetrics()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := c.String("view")
	prof, err := cfg.Profile(view)
	if err != nil {
		return err
	}
	opts := drv.Options{
		Container:       c.String("container"),
		GestureInterval: c.Duration("gesture-interval"),
	}
	if opts.Container == "" {
		opts.Container = prof.Container
	}
	workers, err := connectAll(ctx, servers, opts)
	if err != nil {
		return err
	}
	if len(serials) > 0 {
		more, err := startAll(ctx, serials, opts)
		if err != nil {
			cleanupAll(workers)
			return err
		}
		workers = append(workers, more...)
	}

	asJSON := c.Bool("json")
	out := c.App.Writer
	runCfg := executor.RunnerConfig{
		Config:      cfg,
		View:        view,
		Target:      c.String("target"),
		Metrics:     m,
		Parallelism: c.Int("parallel"),
		StopOnFail:  c.Bool("stop-on-fail"),
	}
	if !asJSON {
		fmt.Fprintf(out, "Selecting %s%s%s in %s view\n\n",
			color(colorBold), runCfg.Target, color(colorReset), runCfg.View)
		runCfg.OnDeviceEnd = func(r executor.DeviceResult) { printDeviceResult(out, r) }
	}

	result, err := executor.NewParallelRunner(workers, runCfg).Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printRunSummary(out, result)
	}

	if result.Status != core.StatusSucceeded {
		return cli.Exit("", 1)
	}
	return nil
}

// connectAll opens one session per server. Sessions opened before a failure are closed.
func connectAll(ctx context.Context, servers []string, opts drv.Options) ([]executor.DeviceWorker, error) {
	var workers []executor.DeviceWorker
	for _, url := range servers {
		logger.Info("connecting to %s", url)
		s, err := drv.Connect(ctx, url, opts)
		if err != nil {
			cleanupAll(workers)
			return nil, fmt.Errorf("connect %s: %w", url, err)
		}
		workers = append(workers, executor.DeviceWorker{
			DeviceID: url,
			Device:   s,
			Cleanup: func() {
				if err := s.Close(); err != nil {
					logger.Warn("close session on %s: %v", url, err)
				}
			},
		})
	}
	return workers, nil
}

// startAll starts UIAutomator2 on each adb device and opens a session on it.
func startAll(ctx context.Context, serials []string, opts drv.Options) ([]executor.DeviceWorker, error) {
	var workers []executor.DeviceWorker
	for _, serial := range serials {
		w, err := startDevice(ctx, serial, opts)
		if err != nil {
			cleanupAll(workers)
			return nil, fmt.Errorf("device %s: %w", serial, err)
		}
		workers = append(workers, w)
	}
	return workers, nil
}

func startDevice(ctx context.Context, serial string, opts drv.Options) (executor.DeviceWorker, error) {
	dev, err := device.New(ctx, serial)
	if err != nil {
		return executor.DeviceWorker{}, err
	}
	info := dev.Info(ctx)
	logger.Info("starting UIAutomator2 on %s (%s %s, SDK %s)", dev.Serial(), info.Brand, info.Model, info.SDK)

	client, err := dev.StartUIAutomator2(ctx, device.DefaultUIAutomator2Config())
	if err != nil {
		dev.Release(context.WithoutCancel(ctx))
		return executor.DeviceWorker{}, err
	}
	s, err := drv.Open(ctx, client, opts)
	if err != nil {
		dev.Release(context.WithoutCancel(ctx))
		return executor.DeviceWorker{}, err
	}
	return executor.DeviceWorker{
		DeviceID: dev.Serial(),
		Device:   s,
		Cleanup: func() {
			if err := s.Close(); err != nil {
				logger.Warn("close session on %s: %v", dev.Serial(), err)
			}
			dev.Release(context.Background())
		},
	}, nil
}

func cleanupAll(workers []executor.DeviceWorker) {
	for _, w := range workers {
		w.Cleanup()
	}
}

func writeJSON(w io.Writer, result *executor.RunResult) error {
	results := make([]selectResult, 0, len(result.Results))
	for _, r := range result.Results {
		sr := selectResult{Device: r.DeviceID, Status: r.Status.String()}
		if r.Outcome != nil {
			sr.Outcome = r.Outcome
		}
		if r.Err != nil {
			sr.Error = r.Err.Error()
			sr.Code = core.Code(r.Err)
		}
		results = append(results, sr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"status":   result.Status.String(),
		"duration": result.Duration.String(),
		"results":  results,
	})
}
