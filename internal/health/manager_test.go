package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChecker is a test double for health checks
type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").WithDetail("error", ctx.Err().Error())
		}
	}
	return m.result
}

func TestManagerCheck(t *testing.T) {
	m := NewManager()
	m.AddChecker(&mockChecker{name: "backend", result: Healthy("ok")})
	m.AddChecker(&mockChecker{name: "upstream", result: Degraded("slow")})
	m.AddChecker(&mockChecker{name: "broken"})

	results := m.Check(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, StatusHealthy, results["backend"].Status)
	assert.Equal(t, StatusDegraded, results["upstream"].Status)
	assert.Equal(t, StatusUnhealthy, results["broken"].Status, "nil results count as unhealthy")
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, []string{"backend", "upstream", "broken"}, m.CheckNames())
}

func TestManagerCheckTimeout(t *testing.T) {
	m := NewManager().WithTimeout(20 * time.Millisecond)
	m.AddChecker(&mockChecker{name: "slow", result: Healthy("late"), delay: time.Second})

	start := time.Now()
	results := m.Check(context.Background())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
}

func TestManagerChecksRunConcurrently(t *testing.T) {
	m := NewManager()
	for _, name := range []string{"a", "b", "c", "d"} {
		m.AddChecker(&mockChecker{name: name, result: Healthy("ok"), delay: 50 * time.Millisecond})
	}

	start := time.Now()
	m.Check(context.Background())

	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestOverallStatus(t *testing.T) {
	m := NewManager()

	tests := []struct {
		name    string
		results map[string]*Result
		want    Status
	}{
		{"empty", map[string]*Result{}, StatusHealthy},
		{"all healthy", map[string]*Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]*Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]*Result{"a": Degraded(""), "b": Unhealthy("")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.OverallStatus(tt.results))
		})
	}
}
