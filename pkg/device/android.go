// Package device prepares Android devices over ADB so a UIAutomator2 session can be
// opened on them: port forwarding, server start and stop, basic properties.
package device

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes adb with the given arguments and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// adbRunner runs the adb binary.
type adbRunner struct {
	path string
}

func (r adbRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = stdout.String()
		}
		return "", fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(errMsg))
	}
	return stdout.String(), nil
}

// AndroidDevice manages an Android device connection via ADB.
type AndroidDevice struct {
	serial     string
	adb        Runner
	socketPath string // forwarded UIAutomator2 socket (Linux/Mac)
	localPort  int    // forwarded UIAutomator2 TCP port (Windows)
}

// DeviceInfo contains basic device information.
type DeviceInfo struct {
	Serial     string
	Model      string
	SDK        string
	Brand      string
	IsEmulator bool
}

// New creates an AndroidDevice for the given serial using the adb binary on PATH.
// An empty serial picks the first connected device.
func New(ctx context.Context, serial string) (*AndroidDevice, error) {
	path, err := findADB()
	if err != nil {
		return nil, err
	}
	return Open(ctx, serial, adbRunner{path: path})
}

// Open creates an AndroidDevice on top of runner and waits until it is online.
func Open(ctx context.Context, serial string, runner Runner) (*AndroidDevice, error) {
	if serial == "" {
		serials, err := List(ctx, runner)
		if err != nil {
			return nil, err
		}
		if len(serials) == 0 {
			return nil, fmt.Errorf("no connected devices found")
		}
		serial = serials[0]
	}

	d := &AndroidDevice{serial: serial, adb: runner}
	if err := d.waitForDevice(ctx, 5*time.Second); err != nil {
		return nil, fmt.Errorf("device not found: %w", err)
	}
	return d, nil
}

// List returns the serials of all devices in the "device" state.
func List(ctx context.Context, runner Runner) ([]string, error) {
	out, err := runner.Run(ctx, "devices")
	if err != nil {
		return nil, err
	}

	var serials []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 && parts[1] == "device" {
			serials = append(serials, parts[0])
		}
	}
	return serials, nil
}

// Serial returns the device serial number.
func (d *AndroidDevice) Serial() string {
	return d.serial
}

// Shell runs a shell command on the device.
func (d *AndroidDevice) Shell(ctx context.Context, cmd string) (string, error) {
	return d.run(ctx, "shell", cmd)
}

// IsInstalled reports whether a package is installed.
func (d *AndroidDevice) IsInstalled(ctx context.Context, pkg string) bool {
	out, err := d.Shell(ctx, "pm list packages "+pkg)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "package:"+pkg {
			return true
		}
	}
	return false
}

// Forward forwards a local TCP port to a device port.
func (d *AndroidDevice) Forward(ctx context.Context, localPort, remotePort int) error {
	_, err := d.run(ctx, "forward", fmt.Sprintf("tcp:%d", localPort), fmt.Sprintf("tcp:%d", remotePort))
	return err
}

// RemoveForward removes a TCP port forward.
func (d *AndroidDevice) RemoveForward(ctx context.Context, localPort int) error {
	_, err := d.run(ctx, "forward", "--remove", fmt.Sprintf("tcp:%d", localPort))
	return err
}

// ForwardSocket forwards a local Unix socket to a device port.
func (d *AndroidDevice) ForwardSocket(ctx context.Context, socketPath string, remotePort int) error {
	_, err := d.run(ctx, "forward", "localfilesystem:"+socketPath, fmt.Sprintf("tcp:%d", remotePort))
	return err
}

// RemoveSocketForward removes a Unix socket forward.
func (d *AndroidDevice) RemoveSocketForward(ctx context.Context, socketPath string) error {
	_, err := d.run(ctx, "forward", "--remove", "localfilesystem:"+socketPath)
	return err
}

// Info returns device information.
func (d *AndroidDevice) Info(ctx context.Context) DeviceInfo {
	prop := func(name string) string {
		out, _ := d.Shell(ctx, "getprop "+name)
		return strings.TrimSpace(out)
	}
	return DeviceInfo{
		Serial:     d.serial,
		Model:      prop("ro.product.model"),
		SDK:        prop("ro.build.version.sdk"),
		Brand:      prop("ro.product.brand"),
		IsEmulator: prop("ro.kernel.qemu") == "1",
	}
}

// run executes adb against this device.
func (d *AndroidDevice) run(ctx context.Context, args ...string) (string, error) {
	return d.adb.Run(ctx, append([]string{"-s", d.serial}, args...)...)
}

// waitForDevice waits for the device to be available.
func (d *AndroidDevice) waitForDevice(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		if out, err := d.run(ctx, "get-state"); err == nil && strings.TrimSpace(out) == "device" {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for device %s", d.serial)
		case <-ticker.C:
		}
	}
}

// findADB locates the ADB binary.
func findADB() (string, error) {
	if path, err := exec.LookPath("adb"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("adb not found in PATH; ensure Android SDK is installed")
}
