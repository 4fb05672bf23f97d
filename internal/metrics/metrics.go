package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the PMOS gate
type Metrics struct {
	// Access gate metrics
	GateDecisions *prometheus.CounterVec
	GateDuration  *prometheus.HistogramVec

	// Role resolution metrics
	RoleClassifications *prometheus.CounterVec
	LookupDuration      *prometheus.HistogramVec
	LookupFailures      *prometheus.CounterVec

	// Identity metrics
	IdentityResolutions *prometheus.CounterVec

	// Backend metrics
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec

	// Cron metrics
	CronRuns     *prometheus.CounterVec
	CronDuration prometheus.Histogram

	// Upstream proxy metrics
	UpstreamRequests *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_gate_decisions_total",
				Help: "Total number of access gate decisions",
			},
			[]string{"action", "category", "role"},
		),
		GateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pmos_gate_duration_seconds",
				Help:    "Access gate evaluation duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"category"},
		),

		RoleClassifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_role_classifications_total",
				Help: "Total number of role classifications by resulting role",
			},
			[]string{"role"},
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pmos_role_lookup_duration_seconds",
				Help:    "Role record lookup duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"table"},
		),
		LookupFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_role_lookup_failures_total",
				Help: "Total number of role lookups that could not be completed",
			},
			[]string{"table"},
		),

		IdentityResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_identity_resolutions_total",
				Help: "Total number of session identity resolutions by outcome",
			},
			[]string{"outcome"},
		),

		BackendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_backend_requests_total",
				Help: "Total number of backend requests",
			},
			[]string{"operation", "status"},
		),
		BackendLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pmos_backend_latency_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		CronRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_cron_runs_total",
				Help: "Total number of recurring task generation runs by outcome",
			},
			[]string{"outcome"},
		),
		CronDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pmos_cron_duration_seconds",
				Help:    "Recurring task generation duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
		),

		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_upstream_requests_total",
				Help: "Total number of requests forwarded to the application upstream",
			},
			[]string{"code"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmos_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// ObserveGate records one gate decision. A nil receiver is a no-op.
func (m *Metrics) ObserveGate(action, category, role string, d time.Duration) {
	if m == nil {
		return
	}
	if role == "" {
		role = "anonymous"
	}
	m.GateDecisions.WithLabelValues(action, category, role).Inc()
	m.GateDuration.WithLabelValues(category).Observe(d.Seconds())
}

// ObserveRole records a completed classification.
func (m *Metrics) ObserveRole(role string) {
	if m == nil {
		return
	}
	m.RoleClassifications.WithLabelValues(role).Inc()
}

// ObserveLookup records a single table lookup.
func (m *Metrics) ObserveLookup(table string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.LookupDuration.WithLabelValues(table).Observe(d.Seconds())
	if err != nil {
		m.LookupFailures.WithLabelValues(table).Inc()
	}
}

// ObserveIdentity records the outcome of resolving a session
// ("authenticated", "anonymous" or "unavailable").
func (m *Metrics) ObserveIdentity(outcome string) {
	if m == nil {
		return
	}
	m.IdentityResolutions.WithLabelValues(outcome).Inc()
}

// ObserveBackend records a backend request. status is 0 when no response arrived.
func (m *Metrics) ObserveBackend(operation string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.BackendRequests.WithLabelValues(operation, label).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveCron records one recurring task generation run.
func (m *Metrics) ObserveCron(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CronRuns.WithLabelValues(outcome).Inc()
	m.CronDuration.Observe(d.Seconds())
}

// ObserveUpstream records a proxied response status.
func (m *Metrics) ObserveUpstream(code int) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveError counts a structured error code for component.
func (m *Metrics) ObserveError(code, component string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
