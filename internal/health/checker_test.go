package health

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusReady(t *testing.T) {
	tests := []struct {
		status Status
		ready  bool
	}{
		{StatusHealthy, true},
		{StatusDegraded, true},
		{StatusUnhealthy, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Ready(); got != tt.ready {
				t.Errorf("Ready() = %v, want %v", got, tt.ready)
			}
		})
	}
}

func TestWorst(t *testing.T) {
	if got := worst(StatusHealthy, StatusDegraded); got != StatusDegraded {
		t.Errorf("worst(healthy, degraded) = %v", got)
	}
	if got := worst(StatusUnhealthy, StatusDegraded); got != StatusUnhealthy {
		t.Errorf("worst(unhealthy, degraded) = %v", got)
	}
	if got := worst(StatusHealthy, StatusHealthy); got != StatusHealthy {
		t.Errorf("worst(healthy, healthy) = %v", got)
	}
}

func TestResultJSON(t *testing.T) {
	result := Unhealthy("backend unreachable").
		WithDetail("error", "connection refused").
		WithLatency(1500 * time.Microsecond)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "unhealthy" {
		t.Errorf("status = %v", got["status"])
	}
	if got["latency_ms"] != 1.5 {
		t.Errorf("latency_ms = %v, want 1.5", got["latency_ms"])
	}
	details, _ := got["details"].(map[string]any)
	if details["error"] != "connection refused" {
		t.Errorf("details = %v", got["details"])
	}
}
