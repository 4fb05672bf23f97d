// Package health reports whether the gate's dependencies can serve requests.
//
// The gate fails closed when role lookups fail, so an unreachable record
// backend makes the instance unready. The UI upstream only degrades it.
package health

import (
	"context"
	"encoding/json"
	"time"
)

// Checker is one dependency check.
type Checker interface {
	// Name identifies the check in probe output ("backend", "upstream").
	Name() string

	// Check must return before ctx expires.
	Check(ctx context.Context) *Result
}

// Status of a check or probe.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Ready reports whether an instance in status s should receive traffic.
// Degraded still serves gate decisions.
func (s Status) Ready() bool {
	return s != StatusUnhealthy
}

func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// worst returns the more severe of a and b.
func worst(a, b Status) Status {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// Result of one check.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"-"`
}

// MarshalJSON reports latency in milliseconds.
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		*plain
		LatencyMS float64 `json:"latency_ms"`
	}{(*plain)(r), float64(r.Latency.Microseconds()) / 1000})
}

func newResult(status Status, message string) *Result {
	return &Result{Status: status, Message: message, Details: map[string]any{}}
}

// WithDetail adds a detail and returns r.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns r.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

func Healthy(message string) *Result   { return newResult(StatusHealthy, message) }
func Degraded(message string) *Result  { return newResult(StatusDegraded, message) }
func Unhealthy(message string) *Result { return newResult(StatusUnhealthy, message) }
