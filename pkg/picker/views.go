package picker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/config"
	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/metrics"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

// ISODate is always accepted for calendar targets, next to the profile layout.
const ISODate = "2006-01-02"

// Year builds a picker for a vertical list of years.
func Year(dev search.Device, prof config.Profile, m *metrics.Metrics) (*Picker[int], error) {
	return numeric(dev, config.ViewYear, prof, m)
}

// Spinner builds a picker for a numeric wheel.
func Spinner(dev search.Device, prof config.Profile, m *metrics.Metrics) (*Picker[int], error) {
	return numeric(dev, config.ViewSpinner, prof, m)
}

func numeric(dev search.Device, kind string, prof config.Profile, m *metrics.Metrics) (*Picker[int], error) {
	cfg, dir, err := base[int](kind, prof, m)
	if err != nil {
		return nil, err
	}
	cfg.Decode = search.DecodeInt
	cfg.Distance = search.IntDistance
	return build(dev, kind, prof, cfg, dir, parseInt)
}

func parseInt(raw string) (search.Target[int], error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return search.Target[int]{}, err
	}
	return search.NewTarget(n, search.CompareInts), nil
}

// Month builds a picker for a month list. Labels are parsed with the profile layout
// ("January" by default, "January 2006" for lists spanning years).
func Month(dev search.Device, prof config.Profile, m *metrics.Metrics) (*Picker[time.Time], error) {
	cfg, dir, err := base[time.Time](config.ViewMonth, prof, m)
	if err != nil {
		return nil, err
	}
	layout := prof.Layout
	if layout == "" {
		layout = "January"
	}
	cfg.Decode = search.DecodeTime(layout)
	cfg.Distance = search.MonthDistance
	parse := func(raw string) (search.Target[time.Time], error) {
		t, err := time.Parse(layout, strings.TrimSpace(raw))
		if err != nil {
			return search.Target[time.Time]{}, err
		}
		return search.NewTarget(t, search.CompareMonths), nil
	}
	return build(dev, config.ViewMonth, prof, cfg, dir, parse)
}

// CalendarDay builds a picker for a day grid paged by month.
//
// Day cells carry the full date in their accessibility label. Cells that are not
// date-shaped (weekday headers, navigation arrows) carry no value. The coarse phase counts months,
// so itemsPerSwipe is the number of months one jump moves. With refresh enabled the
// "day 1" cell is tapped before every read so the grid commits its displayed month.
func CalendarDay(dev search.Device, prof config.Profile, m *metrics.Metrics) (*Picker[time.Time], error) {
	cfg, dir, err := base[time.Time](config.ViewCalendarDay, prof, m)
	if err != nil {
		return nil, err
	}
	layout := prof.Layout
	if layout == "" {
		layout = "02 January 2006"
	}
	cfg.Decode = datesOnly(layout, search.DecodeTime(layout))
	cfg.Distance = search.MonthDistance
	if prof.RefreshEnabled() {
		cfg.Probe = search.SentinelProbe{Match: search.FirstOfMonth}
	}
	parse := func(raw string) (search.Target[time.Time], error) {
		raw = strings.TrimSpace(raw)
		t, err := time.Parse(ISODate, raw)
		if err != nil {
			if t, err = time.Parse(layout, raw); err != nil {
				return search.Target[time.Time]{}, fmt.Errorf("want %s or %q: %w", ISODate, layout, err)
			}
		}
		return search.NewTarget(t, search.CompareDays), nil
	}
	return build(dev, config.ViewCalendarDay, prof, cfg, dir, parse)
}

// Choice builds a picker for an ordered list of labels taken from the profile.
func Choice(dev search.Device, kind string, prof config.Profile, m *metrics.Metrics) (*Picker[int], error) {
	if len(prof.Choices) == 0 {
		return nil, core.ErrMissingRequired.WithMessage(fmt.Sprintf("%s picker: choices are required", kind))
	}
	cfg, dir, err := base[int](kind, prof, m)
	if err != nil {
		return nil, err
	}
	decode := search.DecodeIndex(prof.Choices)
	cfg.Decode = decode
	cfg.Distance = search.IntDistance
	parse := func(raw string) (search.Target[int], error) {
		i, ok, _ := decode(search.Item{Text: raw})
		if !ok {
			return search.Target[int]{}, fmt.Errorf("%q is not one of %v", raw, prof.Choices)
		}
		return search.NewTarget(i, search.CompareInts), nil
	}
	return build(dev, kind, prof, cfg, dir, parse)
}

// datesOnly skips cells that cannot be a date in layout: no digit, or a different
// number of fields (weekday headers, arrows, a "June 2024" caption). A date-shaped
// label that fails to parse is still an error.
func datesOnly(layout string, decode search.DecodeFunc[time.Time]) search.DecodeFunc[time.Time] {
	fields := len(strings.Fields(layout))
	return func(it search.Item) (time.Time, bool, error) {
		label := strings.TrimSpace(it.AccessibilityLabel)
		if label == "" {
			label = strings.TrimSpace(it.Text)
		}
		if !strings.ContainsAny(label, "0123456789") || len(strings.Fields(label)) != fields {
			return time.Time{}, false, nil
		}
		return decode(it)
	}
}
