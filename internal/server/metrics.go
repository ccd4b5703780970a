package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes, used as the "outcome" label.
const (
	OutcomeOK             = "ok"
	OutcomeCompositeError = "composite_error"
	OutcomeInvalid        = "invalid"
	OutcomeError          = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	projections *prometheus.CounterVec
	duration    prometheus.Histogram
	skipped     prometheus.Counter
}

// NewMetrics registers the projection collectors plus the Go runtime ones.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ipcsim_projections_total",
			Help: "Projection requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ipcsim_projection_duration_seconds",
			Help:    "Wall time of projection runs.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ipcsim_skipped_categories_total",
			Help: "Categories left out of projections for lack of history.",
		}),
	}
	m.registry.MustRegister(
		m.projections,
		m.duration,
		m.skipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRun(rec RunRecord) {
	m.projections.WithLabelValues(rec.Outcome).Inc()
	if rec.Outcome == OutcomeError {
		return
	}
	m.duration.Observe(rec.Duration.Seconds())
	m.skipped.Add(float64(rec.Skipped))
}
