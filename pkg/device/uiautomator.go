package device

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/logger"
	"github.com/devicelab-dev/scrollseek/pkg/uiautomator2"
)

// UIAutomator2 package names
const (
	UIAutomator2Server = "io.appium.uiautomator2.server"
	UIAutomator2Test   = "io.appium.uiautomator2.server.test"
)

// DefaultDevicePort is the port the server listens on inside the device.
const DefaultDevicePort = 6790

// Port range for TCP forwarding
const (
	portRangeStart = 6001
	portRangeEnd   = 7001
)

// UIAutomator2Config holds configuration for the UIAutomator2 server.
type UIAutomator2Config struct {
	SocketPath string        // Unix socket path (default: <tmp>/scrollseek-uia2-<serial>.sock)
	LocalPort  int           // TCP port when UseTCP is set (default: first free port)
	DevicePort int           // Port on device (default: 6790)
	Timeout    time.Duration // Startup timeout (default: 30s)
	UseTCP     bool          // Forward a TCP port instead of a Unix socket
}

// DefaultUIAutomator2Config returns default configuration. Windows has no Unix socket
// forwarding and always uses TCP.
func DefaultUIAutomator2Config() UIAutomator2Config {
	return UIAutomator2Config{
		DevicePort: DefaultDevicePort,
		Timeout:    30 * time.Second,
		UseTCP:     runtime.GOOS == "windows",
	}
}

// DefaultSocketPath returns the socket path used when none is configured.
func (d *AndroidDevice) DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), "scrollseek-uia2-"+d.serial+".sock")
}

// Client returns a client for the forwarded server.
func (d *AndroidDevice) Client() *uiautomator2.Client {
	if d.socketPath != "" {
		return uiautomator2.NewClient(d.socketPath)
	}
	return uiautomator2.NewClientTCP(d.localPort)
}

// StartUIAutomator2 forwards the server port and starts the server unless it already
// answers. It returns a client for the forwarded server.
func (d *AndroidDevice) StartUIAutomator2(ctx context.Context, cfg UIAutomator2Config) (*uiautomator2.Client, error) {
	if cfg.DevicePort == 0 {
		cfg.DevicePort = DefaultDevicePort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	if err := d.forward(ctx, cfg); err != nil {
		return nil, err
	}
	if d.ready(ctx) {
		logger.Info("UIAutomator2 already running on %s", d.serial)
		return d.Client(), nil
	}

	if !d.IsInstalled(ctx, UIAutomator2Server) {
		return nil, fmt.Errorf("UIAutomator2 server not installed: %s", UIAutomator2Server)
	}
	if !d.IsInstalled(ctx, UIAutomator2Test) {
		return nil, fmt.Errorf("UIAutomator2 test APK not installed: %s", UIAutomator2Test)
	}

	// nohup keeps the instrumentation alive after the shell returns
	instrumentCmd := fmt.Sprintf(
		"nohup am instrument -w -e disableAnalytics true "+
			"%s/androidx.test.runner.AndroidJUnitRunner "+
			"> /dev/null 2>&1 &",
		UIAutomator2Test,
	)
	if _, err := d.Shell(ctx, instrumentCmd); err != nil {
		return nil, fmt.Errorf("failed to start instrumentation: %w", err)
	}
	logger.Info("starting UIAutomator2 on %s", d.serial)

	if err := d.waitForUIAutomator2Ready(ctx, cfg.Timeout); err != nil {
		d.StopUIAutomator2(context.WithoutCancel(ctx))
		return nil, err
	}
	return d.Client(), nil
}

// forward sets up socket or TCP forwarding to the device port.
func (d *AndroidDevice) forward(ctx context.Context, cfg UIAutomator2Config) error {
	if cfg.UseTCP {
		localPort := cfg.LocalPort
		if localPort == 0 {
			port, err := findFreePort(portRangeStart, portRangeEnd)
			if err != nil {
				return err
			}
			localPort = port
		}
		if err := d.Forward(ctx, localPort, cfg.DevicePort); err != nil {
			return fmt.Errorf("port forward failed: %w", err)
		}
		d.localPort = localPort
		return nil
	}

	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = d.DefaultSocketPath()
	}
	// Remove stale socket file
	os.Remove(socketPath)

	if err := d.ForwardSocket(ctx, socketPath, cfg.DevicePort); err != nil {
		return fmt.Errorf("socket forward failed: %w", err)
	}
	d.socketPath = socketPath
	return nil
}

// findFreePort finds a free TCP port in the given range.
func findFreePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port found in range %d-%d", start, end)
}

// Release removes the forwards set up by StartUIAutomator2 and leaves the server running.
func (d *AndroidDevice) Release(ctx context.Context) {
	if d.socketPath != "" {
		d.RemoveSocketForward(ctx, d.socketPath)
		os.Remove(d.socketPath)
		d.socketPath = ""
	}
	if d.localPort != 0 {
		d.RemoveForward(ctx, d.localPort)
		d.localPort = 0
	}
}

// StopUIAutomator2 stops the UIAutomator2 server and removes the forwards.
func (d *AndroidDevice) StopUIAutomator2(ctx context.Context) {
	d.Shell(ctx, "am force-stop "+UIAutomator2Server)
	d.Shell(ctx, "am force-stop "+UIAutomator2Test)
	d.Release(ctx)
}

// ready reports whether the forwarded server answers its status endpoint.
func (d *AndroidDevice) ready(ctx context.Context) bool {
	probe := d.Client()
	probe.SetRetryMax(0)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ok, err := probe.Status(ctx)
	return err == nil && ok
}

// waitForUIAutomator2Ready waits for the server to be ready.
func (d *AndroidDevice) waitForUIAutomator2Ready(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		if d.ready(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("UIAutomator2 server not ready after %v", timeout)
		case <-ticker.C:
		}
	}
}
