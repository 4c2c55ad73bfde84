package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus-compatible metrics for graph execution.
//
// Metrics exposed (all namespaced with "arcsys_"):
//
//   - pipeline_step_latency_ms (histogram): node execution duration in
//     milliseconds, labeled by node_id and status (success/error).
//   - pipeline_step_failures_total (counter): node executions that surfaced a
//     failure, labeled by node_id.
//   - pipeline_runs_total (counter): completed run outcomes, labeled by
//     outcome (completed/error/canceled/max_steps).
//   - pipeline_retries_total (counter): passes taken through a retry edge,
//     labeled by edge.
//
// Thread-safe: prometheus collectors handle concurrent observation.
type Metrics struct {
	stepLatency  *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec
	runs         *prometheus.CounterVec
	retries      *prometheus.CounterVec
}

// NewMetrics creates and registers all graph execution metrics with the
// provided registry. Use prometheus.DefaultRegisterer for the global
// registry, or a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		stepLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arcsys",
			Name:      "pipeline_step_latency_ms",
			Help:      "Node execution duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000},
		}, []string{"node_id", "status"}),
		stepFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcsys",
			Name:      "pipeline_step_failures_total",
			Help:      "Node executions that surfaced a failure.",
		}, []string{"node_id"}),
		runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcsys",
			Name:      "pipeline_runs_total",
			Help:      "Run outcomes.",
		}, []string{"outcome"}),
		retries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcsys",
			Name:      "pipeline_retries_total",
			Help:      "Passes taken through a retry edge.",
		}, []string{"edge"}),
	}
}

// ObserveStep records one node execution.
func (m *Metrics) ObserveStep(nodeID string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
		m.stepFailures.WithLabelValues(nodeID).Inc()
	}
	m.stepLatency.WithLabelValues(nodeID, status).Observe(float64(d.Milliseconds()))
}

// ObserveRun records a run outcome.
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// ObserveRetry records one traversal of a retry edge.
func (m *Metrics) ObserveRetry(edge string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(edge).Inc()
}
