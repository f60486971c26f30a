// Package metrics defines the Prometheus collectors for picker searches and exposes an
// HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gesture phases.
const (
	PhaseCoarse = "coarse"
	PhaseFine   = "fine"
)

// Metrics holds the search collectors. A nil *Metrics records nothing.
type Metrics struct {
	SearchRunsTotal      *prometheus.CounterVec
	SearchDuration       *prometheus.HistogramVec
	SearchIterations     *prometheus.HistogramVec
	GesturesTotal        *prometheus.CounterVec
	GestureFailuresTotal *prometheus.CounterVec
	SearchesInFlight     prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
// Passing nil registers on a fresh private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		SearchRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrollseek_search_runs_total",
				Help: "Completed searches by view and outcome code (ok, search_exhausted, cancelled, ...).",
			},
			[]string{"view", "outcome"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrollseek_search_duration_seconds",
				Help:    "Wall time of one search call.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"view"},
		),
		SearchIterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrollseek_search_gestures",
				Help:    "Gestures issued per search call.",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"view"},
		),
		GesturesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrollseek_gestures_total",
				Help: "Swipe gestures dispatched by view and phase (coarse, fine).",
			},
			[]string{"view", "phase"},
		),
		GestureFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrollseek_gesture_failures_total",
				Help: "Swipe gestures the device rejected.",
			},
			[]string{"view"},
		),
		SearchesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "scrollseek_searches_in_flight",
				Help: "Searches currently running across all sessions.",
			},
		),
	}

	reg.MustRegister(
		m.SearchRunsTotal,
		m.SearchDuration,
		m.SearchIterations,
		m.GesturesTotal,
		m.GestureFailuresTotal,
		m.SearchesInFlight,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Begin marks a search as started.
func (m *Metrics) Begin() {
	if m == nil {
		return
	}
	m.SearchesInFlight.Inc()
}

// ObserveGesture records one dispatched gesture.
func (m *Metrics) ObserveGesture(view, phase string, err error) {
	if m == nil {
		return
	}
	m.GesturesTotal.WithLabelValues(view, phase).Inc()
	if err != nil {
		m.GestureFailuresTotal.WithLabelValues(view).Inc()
	}
}

// ObserveRun records a finished search. outcome is "ok" or the error code.
func (m *Metrics) ObserveRun(view, outcome string, gestures int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchesInFlight.Dec()
	m.SearchRunsTotal.WithLabelValues(view, outcome).Inc()
	m.SearchDuration.WithLabelValues(view).Observe(elapsed.Seconds())
	m.SearchIterations.WithLabelValues(view).Observe(float64(gestures))
}

// Handler returns an HTTP handler serving the registry the metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
