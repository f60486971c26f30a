package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/executor"
	"github.com/devicelab-dev/scrollseek/pkg/picker"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// formatOutcome renders the gesture accounting of a selection.
func formatOutcome(o *picker.Outcome) string {
	s := fmt.Sprintf("%d gestures", o.Gestures)
	if o.CoarseGestures > 0 {
		s += fmt.Sprintf(" (coarse %d, fine %d)", o.CoarseGestures, o.FineGestures)
	}
	if o.FailedGestures > 0 {
		s += fmt.Sprintf(", %d failed", o.FailedGestures)
	}
	return s
}

func printDeviceResult(w io.Writer, r executor.DeviceResult) {
	switch r.Status {
	case core.StatusSucceeded:
		fmt.Fprintf(w, "  %s✓%s %s  %s%s%s  %s %s(%s)%s\n",
			color(colorGreen), color(colorReset), r.DeviceID,
			color(colorBold), r.Outcome.Label, color(colorReset),
			formatOutcome(r.Outcome),
			color(colorGray), formatDuration(r.Duration), color(colorReset))
	case core.StatusCancelled:
		fmt.Fprintf(w, "  %s⚠%s %s  cancelled\n", color(colorYellow), color(colorReset), r.DeviceID)
	default:
		fmt.Fprintf(w, "  %s✗%s %s  %s%v%s\n",
			color(colorRed), color(colorReset), r.DeviceID,
			color(colorRed), r.Err, color(colorReset))
	}
}

func printRunSummary(w io.Writer, res *executor.RunResult) {
	fmt.Fprintf(w, "\n%s%d/%d%s devices selected in %s",
		color(colorBold), res.Succeeded, res.Total, color(colorReset), formatDuration(res.Duration))
	if res.Failed > 0 {
		fmt.Fprintf(w, ", %s%d failed%s", color(colorRed), res.Failed, color(colorReset))
	}
	if res.Cancelled > 0 {
		fmt.Fprintf(w, ", %s%d cancelled%s", color(colorYellow), res.Cancelled, color(colorReset))
	}
	fmt.Fprintln(w)
}
