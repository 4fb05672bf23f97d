// Package backend is a client for the managed relational backend: PostgREST
// row lookups and stored procedure calls under /rest/v1 and the session user
// endpoint under /auth/v1.
package backend

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/metrics"
	"github.com/felixgeelhaar/pmos/internal/telemetry"
	"github.com/felixgeelhaar/pmos/internal/version"
)

var userAgent = version.GetInfo().UserAgent()

// Client talks to the backend over HTTP. It is built once at start-up and
// injected wherever lookups happen; it holds no per-request state.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// Config holds backend client configuration.
type Config struct {
	// URL is the backend base URL (required)
	// Example: "https://abcd.supabase.co"
	URL string

	// AnonKey is the public API key. Sent as the apikey header when no
	// service key is configured, and always for /auth/v1 calls.
	AnonKey string

	// ServiceKey is the server-side key used for row lookups and RPC.
	ServiceKey string

	// Timeout bounds every request (default: 10s)
	Timeout time.Duration

	// CACert is an optional PEM bundle for self-hosted backends
	CACert string

	// Metrics is optional
	Metrics *metrics.Metrics
}

// NewClient creates a new backend client with the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.NewConfigInvalidError("backend url is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("backend url %q is not an absolute URL", cfg.URL))
	}
	if cfg.AnonKey == "" && cfg.ServiceKey == "" {
		return nil, errors.NewConfigInvalidError("a backend anon key or service key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient, err := createHTTPClient(cfg.CACert, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
	}, nil
}

func createHTTPClient(caCert string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	if caCert != "" {
		pem, err := os.ReadFile(caCert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA cert %s", caCert)
		}
		transport.TLSClientConfig.RootCAs = pool
	}

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// serverKey is the key used for data access.
func (c *Client) serverKey() string {
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}

// publicKey is the key identifying the project on /auth/v1.
func (c *Client) publicKey() string {
	if c.anonKey != "" {
		return c.anonKey
	}
	return c.serviceKey
}

// do sends req, recording metrics and a span under operation. The caller
// owns the response body.
func (c *Client) do(ctx context.Context, operation, target string, req *http.Request) (*http.Response, error) {
	ctx, span := telemetry.StartBackendSpan(ctx, operation, target)
	defer span.End()

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		c.metrics.ObserveBackend(operation, 0, time.Since(start))
		telemetry.RecordError(span, err)
		return nil, errors.Wrap(errors.ErrCodeBackendRequest, operation+" "+target, err)
	}
	c.metrics.ObserveBackend(operation, resp.StatusCode, time.Since(start))
	telemetry.RecordSuccess(span)
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, key string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackendRequest, "failed to create request", err)
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Health checks that the REST endpoint answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/", nil, c.serverKey())
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, "health", "rest", req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= 500 {
		return errors.NewBackendStatusError("health", resp.StatusCode, "")
	}
	return nil
}

// URL returns the backend base URL.
func (c *Client) URL() string {
	return c.baseURL
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
