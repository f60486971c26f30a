// Package cli provides the command-line interface for scrollseek.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/scrollseek/pkg/config"
	"github.com/devicelab-dev/scrollseek/pkg/logger"
	"github.com/devicelab-dev/scrollseek/pkg/metrics"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to scrollseek.yaml (default: $SCROLLSEEK_HOME/scrollseek.yaml)",
		EnvVars: []string{"SCROLLSEEK_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write the log to this file",
		EnvVars: []string{"SCROLLSEEK_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"SCROLLSEEK_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "metrics-addr",
		Usage:   "Serve Prometheus metrics on this address, e.g. :9090",
		EnvVars: []string{"SCROLLSEEK_METRICS_ADDR"},
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "scrollseek",
		Usage:   "Select values in swipe-only virtualized views",
		Version: Version,
		Description: `scrollseek finds a target item in a list, spinner or calendar that can only
be moved with swipe gestures, and taps it.

Examples:
  scrollseek select --server http://127.0.0.1:6790 --view year --target 1994
  scrollseek select --server http://10.0.0.5:6790,http://10.0.0.6:6790 --view day --target 2024-06-15
  scrollseek simulate --items 100 --page 15 --target 73 --guided
  scrollseek profiles year`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			selectCommand,
			simulateCommand,
			profilesCommand,
		},
		Before: setupLogging,
		After: func(*cli.Context) error {
			logger.Close()
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes the log to --log-file, or to stderr with --verbose.
func setupLogging(c *cli.Context) error {
	level := "info"
	if c.Bool("verbose") {
		level = "debug"
	}
	if err := logger.SetLevel(level); err != nil {
		return err
	}

	if path := c.String("log-file"); path != "" {
		return openLog(path)
	}
	if c.Bool("verbose") {
		logger.InitWriter(c.App.ErrWriter)
	}
	return nil
}

func openLog(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return logger.Init(path)
}

// defaultLogPath is where device runs log when no --log-file is given.
func defaultLogPath() string {
	return filepath.Join(config.GetLogsDir(), "scrollseek.log")
}

// loadConfig reads --config, or the scrollseek.yaml in the home directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadDefault()
}

// startMetrics serves /metrics on --metrics-addr. Without the flag it returns nil
// metrics, which record nothing.
func startMetrics(c *cli.Context) (*metrics.Metrics, func(), error) {
	addr := c.String("metrics-addr")
	if addr == "" {
		return nil, func() {}, nil
	}
	m, _, stop, err := serveMetrics(addr)
	return m, stop, err
}

func serveMetrics(addr string) (*metrics.Metrics, net.Addr, func(), error) {
	m := metrics.New(nil)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()
	logger.Info("serving metrics on %s", ln.Addr())

	return m, ln.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
