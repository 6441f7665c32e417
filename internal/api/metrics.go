package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claim-eval/internal/scoring"
)

// Metrics provides observability for claim processing.
type Metrics struct {
	registry *prometheus.Registry

	// Decision outcomes by verdict
	DecisionOutcome *prometheus.CounterVec

	// Query extraction through decision, excluding I/O
	ProcessLatency prometheus.Histogram

	// Policy documents stored by doc id
	PolicyLoads *prometheus.CounterVec

	// Requests rejected by the per-client limiter
	RateLimited prometheus.Counter
}

// NewMetrics creates a Metrics instance backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_decision_outcomes_total",
			Help: "Total claim decisions by outcome",
		}, []string{"decision"}),
		ProcessLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "claims_process_duration_seconds",
			Help:    "Duration of claim evaluation",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.1},
		}),
		PolicyLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_policy_loads_total",
			Help: "Total policy documents stored by doc id",
		}, []string{"doc_id"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "claims_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// ObserveDecision records a decision outcome and its latency.
func (m *Metrics) ObserveDecision(outcome scoring.Outcome, d time.Duration) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(string(outcome)).Inc()
		m.ProcessLatency.Observe(d.Seconds())
	}
}

// IncrementPolicyLoad records a stored policy document.
func (m *Metrics) IncrementPolicyLoad(docID string) {
	if m != nil {
		m.PolicyLoads.WithLabelValues(docID).Inc()
	}
}

// IncrementRateLimited records a throttled request.
func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
