package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger is implemented by anything that can confirm the role backend
// answers queries (the REST client and the SQLite store).
type Pinger interface {
	Health(ctx context.Context) error
}

// BackendChecker verifies the role backend is reachable. Role lookups fail
// closed, so an unreachable backend means every authenticated page request
// answers 503 and the gate is not ready.
type BackendChecker struct {
	backend Pinger
	name    string
}

// NewBackendChecker creates a checker for the given backend.
func NewBackendChecker(backend Pinger) *BackendChecker {
	return &BackendChecker{backend: backend, name: "backend"}
}

// Name returns the name of this health check.
func (c *BackendChecker) Name() string {
	return c.name
}

// Check pings the backend.
func (c *BackendChecker) Check(ctx context.Context) *Result {
	if c.backend == nil {
		return Unhealthy("no backend configured").
			WithDetail("suggestion", "Set SUPABASE_URL or backend.driver: sqlite")
	}

	start := time.Now()
	if err := c.backend.Health(ctx); err != nil {
		return Unhealthy("backend unreachable").
			WithDetail("error", err.Error()).
			WithLatency(time.Since(start))
	}
	return Healthy("backend reachable").WithLatency(time.Since(start))
}

// UpstreamChecker verifies the application upstream answers HTTP. An
// unreachable upstream degrades the gate rather than failing it: denials
// and redirects are still served.
type UpstreamChecker struct {
	url    string
	client *http.Client
}

// NewUpstreamChecker creates a checker that issues GET url.
// A nil client uses a client with a 3 second timeout.
func NewUpstreamChecker(url string, client *http.Client) *UpstreamChecker {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &UpstreamChecker{url: url, client: client}
}

// Name returns the name of this health check.
func (c *UpstreamChecker) Name() string {
	return "upstream"
}

// Check requests the upstream root.
func (c *UpstreamChecker) Check(ctx context.Context) *Result {
	if c.url == "" {
		return Healthy("no upstream configured").WithDetail("mode", "gate-only")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Unhealthy("invalid upstream url").WithDetail("error", err.Error())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Degraded("upstream unreachable").WithDetail("error", err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Degraded(fmt.Sprintf("upstream returned %d", resp.StatusCode)).
			WithDetail("status", resp.StatusCode)
	}
	return Healthy("upstream reachable").WithDetail("status", resp.StatusCode)
}
