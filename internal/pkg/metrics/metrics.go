package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrm"

// Attendance event outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics holds the attendance collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	events            *prometheus.CounterVec
	calculationErrors prometheus.Counter
	workHours         prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "events_total",
			Help:      "Attendance operations by event and outcome.",
		}, []string{"event", "outcome"}),
		calculationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "calculation_errors_total",
			Help:      "Work hour calculations that fell back to zero because of unparsable input.",
		}),
		workHours: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "work_hours",
			Help:      "Elapsed hours recorded at check-out.",
			Buckets:   []float64{1, 2, 4, 6, 8, 9, 10, 12, 16, 24},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.events,
		m.calculationErrors,
		m.workHours,
	)
	return m
}

func (m *Metrics) RecordEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) RecordCalculationError() {
	if m == nil {
		return
	}
	m.calculationErrors.Inc()
}

func (m *Metrics) ObserveWorkHours(hours float64) {
	if m == nil {
		return
	}
	m.workHours.Observe(hours)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
