// Package metrics exposes Prometheus counters for the ingestion pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "news"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeInserted = "inserted"
	OutcomeMerged   = "merged"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	SearchRequests *prometheus.CounterVec
	Extractions    *prometheus.CounterVec
	ArticlesStored *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Passing a fresh prometheus.NewRegistry
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search provider requests by outcome.",
		}, []string{"outcome"}),
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Article extractions by outcome.",
		}, []string{"outcome"}),
		ArticlesStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_stored_total",
			Help:      "Store writes by outcome.",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of scrape runs by mode.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		}, []string{"mode"}),
		gatherer: reg,
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Search records a search request outcome.
func (m *Metrics) Search(outcome string) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(outcome).Inc()
}

// Extraction records an extraction outcome.
func (m *Metrics) Extraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

// Stored records a store write outcome.
func (m *Metrics) Stored(outcome string) {
	if m == nil {
		return
	}
	m.ArticlesStored.WithLabelValues(outcome).Inc()
}

// ObserveRun records the duration of a run.
func (m *Metrics) ObserveRun(mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(mode).Observe(d.Seconds())
}
