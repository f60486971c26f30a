package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/scrollseek/pkg/driver/mock"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

var simulateCommand = &cli.Command{
	Name:  "simulate",
	Usage: "Run a search against a simulated numbered list",
	Description: `Search a simulated virtualized list of the numbers 0..items-1 and print the
gesture trace. Useful to tune swipe ratios before running on a device.

Examples:
  scrollseek simulate --items 100 --page 15 --target 73
  scrollseek simulate --items 100 --page 15 --target 73 --guided --jump-ratio 1
  scrollseek simulate --items 500 --page 10 --target 20 --start 300 --overshoot 1.6`,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "items",
			Usage: "Number of items in the list",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Items rendered at once",
			Value: 15,
		},
		&cli.IntFlag{
			Name:  "start",
			Usage: "Index of the first rendered item",
		},
		&cli.IntFlag{
			Name:     "target",
			Aliases:  []string{"t"},
			Usage:    "Value to find",
			Required: true,
		},
		&cli.Float64Flag{
			Name:  "swipe-ratio",
			Usage: "Fraction of the view moved by a fine gesture",
			Value: search.DefaultSwipeRatio,
		},
		&cli.Float64Flag{
			Name:  "jump-ratio",
			Usage: "Fraction of the view moved by a coarse gesture",
			Value: 1.0,
		},
		&cli.BoolFlag{
			Name:  "guided",
			Usage: "Run the magnitude-guided variant (coarse jumps, then fine search)",
		},
		&cli.Float64Flag{
			Name:  "overshoot",
			Usage: "Actuation scale of every gesture; above 1 overshoots, below 1 falls short",
			Value: 1.0,
		},
		&cli.IntFlag{
			Name:  "max-iterations",
			Usage: "Gesture budget",
			Value: search.DefaultMaxIterations,
		},
	},
	Action: runSimulate,
}

// simulation is one simulated search setup.
type simulation struct {
	Items, Page, Start, Target int
	SwipeRatio, JumpRatio      float64
	Guided                     bool
	Overshoot                  float64
	MaxIterations              int
}

func runSimulate(c *cli.Context) error {
	m, stopMetrics, err := startMetrics(c)
	if err != nil {
		return err
	}
	defer stopMetrics()

	sim := simulation{
		Items:         c.Int("items"),
		Page:          c.Int("page"),
		Start:         c.Int("start"),
		Target:        c.Int("target"),
		SwipeRatio:    c.Float64("swipe-ratio"),
		JumpRatio:     c.Float64("jump-ratio"),
		Guided:        c.Bool("guided"),
		Overshoot:     c.Float64("overshoot"),
		MaxIterations: c.Int("max-iterations"),
	}
	if sim.Items <= 0 || sim.Page <= 0 {
		return fmt.Errorf("--items and --page must be positive")
	}

	view := mock.New(mock.Config{
		Labels:   mock.NumberedLabels(0, sim.Items-1),
		PageSize: sim.Page,
		Start:    sim.Start,
		Scale:    func(int) float64 { return sim.Overshoot },
	})
	s, err := search.New[int](view, search.Config[int]{
		Name:          "simulate",
		Decode:        search.DecodeInt,
		Distance:      search.IntDistance,
		SwipeRatio:    sim.SwipeRatio,
		JumpRatio:     sim.JumpRatio,
		MaxIterations: sim.MaxIterations,
		Metrics:       m,
	})
	if err != nil {
		return err
	}

	target := search.NewTarget(sim.Target, search.CompareInts)
	var res *search.Result[int]
	if sim.Guided {
		res, err = s.SearchGuided(c.Context, target, search.DirectionNone, sim.itemsPerSwipe())
	} else {
		res, err = s.Search(c.Context, target, search.DirectionNone)
	}

	out := c.App.Writer
	printTrace(out, view.Directions())
	if err != nil {
		fmt.Fprintf(out, "%s✗%s %v\n", color(colorRed), color(colorReset), err)
		return cli.Exit("", 1)
	}
	fmt.Fprintf(out, "%s✓%s matched %s%s%s at row %d after %d gestures",
		color(colorGreen), color(colorReset), color(colorBold), res.Item.Label(), color(colorReset),
		res.Index, res.Gestures)
	if sim.Guided {
		fmt.Fprintf(out, " (coarse %d, fine %d)", res.CoarseGestures, res.FineGestures)
	}
	fmt.Fprintf(out, ", tapped %v\n", view.Taps())
	return nil
}

// itemsPerSwipe is how many items one coarse gesture moves the list.
func (s simulation) itemsPerSwipe() int {
	n := int(s.JumpRatio * float64(s.Page))
	if n < 1 {
		n = 1
	}
	return n
}

// printTrace prints the gesture directions, e.g. "gestures: ↓ ↓ ↓ ↑".
func printTrace(w io.Writer, dirs []search.Direction) {
	arrows := make([]string, len(dirs))
	for i, d := range dirs {
		arrows[i] = "↓"
		if d == search.Backward {
			arrows[i] = "↑"
		}
	}
	fmt.Fprintf(w, "%sgestures:%s %s\n", color(colorCyan), color(colorReset), strings.Join(arrows, " "))
}
