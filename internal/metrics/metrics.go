// Package metrics exposes Prometheus collectors for generation, mutation
// and persistence activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuperseded = "superseded"
	OutcomeMissing    = "missing"
	OutcomeCorrupt    = "corrupt"
)

type Metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	genDuration prometheus.Histogram
	mutations   *prometheus.CounterVec
	persistence *prometheus.CounterVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itinera_generations_total",
			Help: "Itinerary generation attempts by outcome.",
		}, []string{"outcome"}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "itinera_generation_duration_seconds",
			Help:    "Time spent waiting for the generation provider.",
			Buckets: []float64{0.1, 0.5, 1, 1.5, 2, 3, 5, 10, 30},
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itinera_mutations_total",
			Help: "Applied itinerary mutations by operation.",
		}, []string{"op"}),
		persistence: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itinera_persistence_total",
			Help: "Save and load attempts by outcome.",
		}, []string{"op", "outcome"}),
	}
	m.registry.MustRegister(
		m.generations, m.genDuration, m.mutations, m.persistence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Generation(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.genDuration.Observe(took.Seconds())
}

func (m *Metrics) Mutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) Persistence(op, outcome string) {
	if m == nil {
		return
	}
	m.persistence.WithLabelValues(op, outcome).Inc()
}
