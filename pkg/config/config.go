// Package config handles configuration for scrollseek.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// View kinds with built-in profiles.
const (
	ViewYear        = "year"
	ViewMonth       = "month"
	ViewCalendarDay = "day"
	ViewSpinner     = "spinner"
	ViewChoice      = "choice"
)

// Config represents the workspace configuration (scrollseek.yaml).
type Config struct {
	// Defaults apply to every view before its own profile.
	Defaults Profile `yaml:"defaults"`

	// Views holds per-view overrides keyed by view kind.
	Views map[string]Profile `yaml:"views"`
}

// Profile holds the tuning knobs of one view kind.
// Zero values mean "inherit".
type Profile struct {
	SwipeRatio    float64       `yaml:"swipeRatio"`    // fraction of the container per fine swipe
	JumpRatio     float64       `yaml:"jumpRatio"`     // fraction of the container per coarse jump
	ItemsPerSwipe int           `yaml:"itemsPerSwipe"` // items moved by one jump; 0 disables the coarse phase
	MaxIterations int           `yaml:"maxIterations"` // gesture budget
	Grace         int           `yaml:"grace"`         // lag iterations tolerated; negative disables
	Settle        time.Duration `yaml:"settle"`        // wait after each gesture
	Duration      time.Duration `yaml:"duration"`      // gesture duration
	Refresh       *bool         `yaml:"refresh"`       // tap the sentinel before each read

	Axis             string `yaml:"axis"`             // vertical | horizontal
	DefaultDirection string `yaml:"defaultDirection"` // forward | backward | none
	Layout           string `yaml:"layout"`           // time layout of calendar labels
	Container        string `yaml:"container"`        // resource-id of the scrollable container

	Choices []string `yaml:"choices"` // ordered labels of a choice list
}

// RefreshEnabled reports whether the refresh probe is turned on.
func (p Profile) RefreshEnabled() bool {
	return p.Refresh != nil && *p.Refresh
}

// Merge returns p with every non-zero field of o applied on top.
func (p Profile) Merge(o Profile) Profile {
	if o.SwipeRatio != 0 {
		p.SwipeRatio = o.SwipeRatio
	}
	if o.JumpRatio != 0 {
		p.JumpRatio = o.JumpRatio
	}
	if o.ItemsPerSwipe != 0 {
		p.ItemsPerSwipe = o.ItemsPerSwipe
	}
	if o.MaxIterations != 0 {
		p.MaxIterations = o.MaxIterations
	}
	if o.Grace != 0 {
		p.Grace = o.Grace
	}
	if o.Settle != 0 {
		p.Settle = o.Settle
	}
	if o.Duration != 0 {
		p.Duration = o.Duration
	}
	if o.Refresh != nil {
		v := *o.Refresh
		p.Refresh = &v
	}
	if o.Axis != "" {
		p.Axis = o.Axis
	}
	if o.DefaultDirection != "" {
		p.DefaultDirection = o.DefaultDirection
	}
	if o.Layout != "" {
		p.Layout = o.Layout
	}
	if o.Container != "" {
		p.Container = o.Container
	}
	if len(o.Choices) > 0 {
		p.Choices = append([]string(nil), o.Choices...)
	}
	return p
}

// Validate checks the ranges the search engine relies on.
func (p Profile) Validate() error {
	if p.SwipeRatio < 0 || p.SwipeRatio > 1 {
		return fmt.Errorf("swipeRatio must be in (0, 1], got %v", p.SwipeRatio)
	}
	if p.JumpRatio < 0 || p.JumpRatio > 1 {
		return fmt.Errorf("jumpRatio must be in (0, 1], got %v", p.JumpRatio)
	}
	if p.ItemsPerSwipe < 0 {
		return fmt.Errorf("itemsPerSwipe must not be negative, got %d", p.ItemsPerSwipe)
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("maxIterations must not be negative, got %d", p.MaxIterations)
	}
	switch p.Axis {
	case "", "vertical", "horizontal":
	default:
		return fmt.Errorf("unknown axis %q", p.Axis)
	}
	switch p.DefaultDirection {
	case "", "none", "forward", "backward":
	default:
		return fmt.Errorf("unknown defaultDirection %q", p.DefaultDirection)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// Builtin returns the built-in profiles.
func Builtin() map[string]Profile {
	return map[string]Profile{
		ViewYear: {
			SwipeRatio:       0.5,
			JumpRatio:        0.8,
			ItemsPerSwipe:    12,
			MaxIterations:    30,
			Grace:            2,
			Settle:           300 * time.Millisecond,
			Refresh:          boolPtr(false),
			Axis:             "vertical",
			DefaultDirection: "backward",
		},
		ViewMonth: {
			SwipeRatio:       0.5,
			MaxIterations:    12,
			Grace:            2,
			Settle:           300 * time.Millisecond,
			Refresh:          boolPtr(false),
			Axis:             "vertical",
			DefaultDirection: "forward",
			Layout:           "January",
		},
		ViewCalendarDay: {
			SwipeRatio:       0.9,
			JumpRatio:        0.9,
			ItemsPerSwipe:    1,
			MaxIterations:    40,
			Grace:            1,
			Settle:           500 * time.Millisecond,
			Refresh:          boolPtr(true),
			Axis:             "horizontal",
			DefaultDirection: "forward",
			Layout:           "02 January 2006",
		},
		ViewSpinner: {
			SwipeRatio:       0.3,
			MaxIterations:    40,
			Grace:            2,
			Settle:           200 * time.Millisecond,
			Refresh:          boolPtr(false),
			Axis:             "vertical",
			DefaultDirection: "forward",
		},
		ViewChoice: {
			SwipeRatio:       0.6,
			MaxIterations:    20,
			Grace:            2,
			Settle:           300 * time.Millisecond,
			Refresh:          boolPtr(false),
			Axis:             "vertical",
			DefaultDirection: "forward",
		},
	}
}

// Profile returns the effective profile of a view kind:
// built-in, then Defaults, then the view's own entry.
func (c *Config) Profile(kind string) (Profile, error) {
	base, ok := Builtin()[kind]
	if !ok {
		if _, custom := c.Views[kind]; !custom {
			return Profile{}, fmt.Errorf("unknown view %q", kind)
		}
		base = Builtin()[ViewChoice]
	}
	p := base.Merge(c.Defaults).Merge(c.Views[kind])
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("view %q: %w", kind, err)
	}
	return p, nil
}

// Kinds returns every configured view kind, sorted.
func (c *Config) Kinds() []string {
	seen := make(map[string]bool)
	for k := range Builtin() {
		seen[k] = true
	}
	for k := range c.Views {
		seen[k] = true
	}
	kinds := make([]string, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Effective returns every profile fully resolved.
func (c *Config) Effective() (map[string]Profile, error) {
	out := make(map[string]Profile)
	for _, k := range c.Kinds() {
		p, err := c.Profile(k)
		if err != nil {
			return nil, err
		}
		out[k] = p
	}
	return out, nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromDir looks for scrollseek.yaml or scrollseek.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"scrollseek.yaml", "scrollseek.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, built-in profiles only
	return &Config{}, nil
}
