// Package observability exposes Prometheus instrumentation for the chat
// pipeline.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the pipeline counters and histograms. A nil *Metrics is
// valid and records nothing, so instrumentation stays optional in tests.
type Metrics struct {
	turnsTotal         *prometheus.CounterVec
	guardInterventions *prometheus.CounterVec
	toolCalls          *prometheus.CounterVec
	modelLatency       prometheus.Histogram
}

// NewMetrics registers the pipeline metrics on the default registry under
// the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		turnsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed chat turns by reply source.",
		}, []string{"source"}),
		guardInterventions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_interventions_total",
			Help:      "Guard verdicts that blocked or rewrote a turn.",
		}, []string{"guard"}),
		toolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool executions by tool name and status.",
		}, []string{"tool", "status"}),
		modelLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_step_duration_seconds",
			Help:      "Latency of individual model steps.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveTurn records a finished turn with its reply source.
func (m *Metrics) ObserveTurn(source string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(source).Inc()
}

// ObserveGuard records a guard that intervened in a turn.
func (m *Metrics) ObserveGuard(guard string) {
	if m == nil {
		return
	}
	m.guardInterventions.WithLabelValues(guard).Inc()
}

// ObserveToolCall records a tool execution outcome.
func (m *Metrics) ObserveToolCall(tool string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
}

// ObserveModelLatency records the duration of one model step, in seconds.
func (m *Metrics) ObserveModelLatency(seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(seconds)
}

// MetricsHandler serves the default registry in the Prometheus exposition
// format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
