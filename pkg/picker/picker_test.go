package picker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/scrollseek/pkg/config"
	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/driver/mock"
	"github.com/devicelab-dev/scrollseek/pkg/search"
)

// fast keeps the built-in profiles but removes the settle wait.
func fast(views map[string]config.Profile) *config.Config {
	return &config.Config{
		Defaults: config.Profile{Settle: time.Nanosecond},
		Views:    views,
	}
}

func profile(t *testing.T, cfg *config.Config, kind string) config.Profile {
	t.Helper()
	p, err := cfg.Profile(kind)
	require.NoError(t, err)
	return p
}

func daysOf(year int) []string {
	var labels []string
	for d := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		labels = append(labels, d.Format("02 January 2006"))
	}
	return labels
}

func TestSelect_YearUsesCoarsePhase(t *testing.T) {
	v := mock.New(mock.Config{Labels: mock.NumberedLabels(1900, 2030), PageSize: 15, Start: 116})

	out, err := Select(context.Background(), v, fast(nil), config.ViewYear, "1994", nil)
	require.NoError(t, err)

	assert.Equal(t, "1994", out.Label)
	assert.Equal(t, 1, out.CoarseGestures)
	assert.Equal(t, 2, out.FineGestures)
	assert.Equal(t, []int{94}, v.Taps())
}

func TestSelect_Month(t *testing.T) {
	months := []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	v := mock.New(mock.Config{Labels: months, PageSize: 5})

	out, err := Select(context.Background(), v, fast(nil), config.ViewMonth, "October", nil)
	require.NoError(t, err)

	assert.Equal(t, "October", out.Label)
	assert.Equal(t, 2, out.Gestures)
	assert.Equal(t, []int{9}, v.Taps())
}

func TestCalendarDay_JumpsByMonth(t *testing.T) {
	cfg := fast(map[string]config.Profile{
		config.ViewCalendarDay: {JumpRatio: 1.0},
	})
	v := mock.New(mock.Config{Labels: daysOf(2024), PageSize: 28})

	p, err := CalendarDay(v, profile(t, cfg, config.ViewCalendarDay), nil)
	require.NoError(t, err)

	res, err := p.Select(context.Background(), "2024-06-15")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), res.Value)
	assert.Equal(t, 5, res.CoarseGestures)
	assert.Equal(t, 0, res.FineGestures)
	assert.Equal(t, []int{166}, v.Taps())
}

func TestCalendarDay_ProfileLayoutTarget(t *testing.T) {
	v := mock.New(mock.Config{Labels: daysOf(2024), PageSize: 28})

	p, err := CalendarDay(v, profile(t, fast(nil), config.ViewCalendarDay), nil)
	require.NoError(t, err)

	res, err := p.Select(context.Background(), "10 January 2024")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Gestures)
	assert.Equal(t, []int{9}, v.Taps())
}

func TestCalendarDay_RefreshProbeFollowsProfile(t *testing.T) {
	on, err := CalendarDay(mock.New(mock.Config{}), profile(t, fast(nil), config.ViewCalendarDay), nil)
	require.NoError(t, err)
	assert.NotNil(t, on.Searcher().Config().Probe)

	off := fast(map[string]config.Profile{config.ViewCalendarDay: {Refresh: new(bool)}})
	p, err := CalendarDay(mock.New(mock.Config{}), profile(t, off, config.ViewCalendarDay), nil)
	require.NoError(t, err)
	assert.Nil(t, p.Searcher().Config().Probe)
}

func TestCalendarDay_HeadersCarryNoValue(t *testing.T) {
	labels := append([]string{"Mon", "Tue", "Wed"}, daysOf(2024)[:20]...)
	v := mock.New(mock.Config{Labels: labels, PageSize: 23})

	out, err := Select(context.Background(), v, fast(nil), config.ViewCalendarDay, "2024-01-05", nil)
	require.NoError(t, err)
	assert.Equal(t, "05 January 2024", out.Label)
}

func TestCalendarDay_MalformedDateIsFatal(t *testing.T) {
	labels := []string{"Mon", "June 2024", "14 June 2024", "15 Juen 2024", "16 June 2024"}
	v := mock.New(mock.Config{Labels: labels, PageSize: 5})

	_, err := Select(context.Background(), v, fast(nil), config.ViewCalendarDay, "2024-06-15", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDecodeFailed), "got %v", err)
	assert.Empty(t, v.Gestures())
	assert.Empty(t, v.Taps())
}

func TestSelect_Spinner(t *testing.T) {
	v := mock.New(mock.Config{Labels: mock.NumberedLabels(0, 59), PageSize: 5})

	out, err := Select(context.Background(), v, fast(nil), config.ViewSpinner, "42", nil)
	require.NoError(t, err)

	assert.Equal(t, "42", out.Label)
	assert.Equal(t, 19, out.Gestures)
}

func TestSelect_CustomChoiceView(t *testing.T) {
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	cfg := fast(map[string]config.Profile{"weekday": {Choices: days}})
	v := mock.New(mock.Config{Labels: days, PageSize: 3})

	out, err := Select(context.Background(), v, cfg, "weekday", "fri", nil)
	require.NoError(t, err)

	assert.Equal(t, "Fri", out.Label)
	assert.Equal(t, "weekday", out.Kind)
	assert.Equal(t, []int{4}, v.Taps())
}

func TestSelect_Errors(t *testing.T) {
	v := mock.New(mock.Config{Labels: mock.NumberedLabels(0, 9)})
	ctx := context.Background()

	_, err := Select(ctx, v, nil, "unknown", "1", nil)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	_, err = Select(ctx, v, nil, config.ViewYear, "nineteen", nil)
	assert.True(t, errors.Is(err, core.ErrInvalidTarget))

	_, err = Select(ctx, v, nil, config.ViewChoice, "a", nil)
	assert.True(t, errors.Is(err, core.ErrMissingRequired))

	cfg := fast(map[string]config.Profile{"weekday": {Choices: []string{"Mon"}}})
	_, err = Select(ctx, v, cfg, "weekday", "Sun", nil)
	assert.True(t, errors.Is(err, core.ErrInvalidTarget))

	bad := fast(map[string]config.Profile{config.ViewYear: {Axis: "diagonal"}})
	_, err = Select(ctx, v, bad, config.ViewYear, "3", nil)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestBase_MapsProfile(t *testing.T) {
	prof := config.Profile{
		SwipeRatio:       0.4,
		JumpRatio:        0.9,
		MaxIterations:    7,
		Grace:            -1,
		Settle:           time.Second,
		Duration:         200 * time.Millisecond,
		Axis:             "horizontal",
		DefaultDirection: "backward",
	}

	cfg, dir, err := base[int]("x", prof, nil)
	require.NoError(t, err)

	assert.Equal(t, search.Backward, dir)
	assert.Equal(t, search.Horizontal, cfg.Axis)
	assert.Equal(t, 0.4, cfg.SwipeRatio)
	assert.Equal(t, 0.9, cfg.JumpRatio)
	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, -1, cfg.Grace)
	assert.Equal(t, time.Second, cfg.Settle)
	assert.Equal(t, 200*time.Millisecond, cfg.GestureDuration)
}
