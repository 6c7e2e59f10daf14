package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the agent loop and the daemon.
type Metrics struct {
	registry      *prometheus.Registry
	AgentRuns     *prometheus.CounterVec
	AgentDuration *prometheus.HistogramVec
	AgentSteps    *prometheus.CounterVec
	ToolCalls     *prometheus.CounterVec
	ParseFailures *prometheus.CounterVec
	ActiveSession *prometheus.GaugeVec
	TransportErrs *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with agent collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reagent_runs_total",
		Help: "Agent runs by variant and outcome",
	}, []string{"variant", "outcome"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reagent_run_duration_seconds",
		Help:    "Agent run duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reagent_steps_total",
		Help: "Completed loop steps by variant",
	}, []string{"variant"})

	toolCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reagent_tool_invocations_total",
		Help: "Tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})

	parseFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reagent_parse_failures_total",
		Help: "Action parse failures by variant",
	}, []string{"variant"})

	active := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reagent_transport_active_sessions",
		Help: "Active streaming sessions by transport",
	}, []string{"transport"})

	trErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reagent_transport_errors_total",
		Help: "Transport-level errors by transport and reason",
	}, []string{"transport", "reason"})

	reg.MustRegister(runs, durs, steps, toolCalls, parseFailures, active, trErrors)

	return &Metrics{
		registry:      reg,
		AgentRuns:     runs,
		AgentDuration: durs,
		AgentSteps:    steps,
		ToolCalls:     toolCalls,
		ParseFailures: parseFailures,
		ActiveSession: active,
		TransportErrs: trErrors,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRun records outcome, duration and step count for a finished run.
func (m *Metrics) RecordRun(variant, outcome string, duration time.Duration, steps int) {
	if m == nil {
		return
	}
	if variant == "" {
		variant = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.AgentRuns.WithLabelValues(variant, outcome).Inc()
	m.AgentDuration.WithLabelValues(variant).Observe(duration.Seconds())
	m.AgentSteps.WithLabelValues(variant).Add(float64(steps))
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	if tool == "" {
		tool = "unknown"
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordParseFailure records a run that failed on the action grammar.
func (m *Metrics) RecordParseFailure(variant string) {
	if m == nil {
		return
	}
	if variant == "" {
		variant = "unknown"
	}
	m.ParseFailures.WithLabelValues(variant).Inc()
}

// IncActiveSessions increments the active session gauge.
func (m *Metrics) IncActiveSessions(transport string) {
	if m == nil {
		return
	}
	m.ActiveSession.WithLabelValues(transport).Inc()
}

// DecActiveSessions decrements the active session gauge.
func (m *Metrics) DecActiveSessions(transport string) {
	if m == nil {
		return
	}
	m.ActiveSession.WithLabelValues(transport).Dec()
}

// RecordTransportError records a transport-level error.
func (m *Metrics) RecordTransportError(transport, reason string) {
	if m == nil {
		return
	}
	if transport == "" {
		transport = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	m.TransportErrs.WithLabelValues(transport, reason).Inc()
}
