// Package server runs the PMOS gate as an HTTP server.
//
// Every request other than the health probes and /metrics passes through the
// access gate. Allowed requests are served by the gate's own endpoints (the
// recurring-task endpoint and the session landing lookup) or forwarded to the
// upstream web application. Shutdown drains connections and fails readiness
// first so load balancers stop routing to the instance.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/pmos/internal/gate"
	"github.com/felixgeelhaar/pmos/internal/health"
	"github.com/felixgeelhaar/pmos/internal/log"
	"github.com/felixgeelhaar/pmos/internal/metrics"
	"github.com/felixgeelhaar/pmos/internal/route"
)

// Server is the gate's HTTP server.
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "0.0.0.0:8080")
	Address string

	// UpstreamURL is the web application requests are forwarded to once
	// the gate allows them. Empty answers allowed requests with 404.
	UpstreamURL string

	// ShutdownTimeout is the maximum time to wait for connections to drain during shutdown.
	// Defaults to 30 seconds if not specified.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds if not specified.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Defaults to 10 seconds if not specified.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds if not specified.
	IdleTimeout time.Duration
}

// Deps are the components the server routes to. Gate and Probes are
// required; Cron, Roles and Registry disable their endpoints when nil.
type Deps struct {
	Probes   *health.ProbeManager
	Gate     *gate.Gate
	Roles    gate.RoleClassifier
	Cron     http.Handler
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Logger   *log.Logger
}

// NewServer creates a new server. It fails only when the upstream URL is invalid.
func NewServer(deps Deps, cfg Config) (*Server, error) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = log.DefaultLogger()
	}

	s := &Server{
		probeManager:    deps.Probes,
		logger:          deps.Logger.With("component", "server"),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	app := http.NewServeMux()
	if deps.Cron != nil {
		app.Handle(route.CronPath, deps.Cron)
	}
	if deps.Roles != nil {
		app.Handle(route.SessionLanding, landingHandler(deps.Roles, s.logger))
	}

	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gate.WriteError(w, http.StatusNotFound, "Not Found")
	})
	if cfg.UpstreamURL != "" {
		proxy, err := newProxy(cfg.UpstreamURL, deps.Metrics, s.logger)
		if err != nil {
			return nil, err
		}
		fallback = proxy.ServeHTTP
	}
	app.Handle("/", fallback)

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/health/startup", s.handleStartup)
	mux.HandleFunc("/healthz", s.handleReadiness)
	if deps.Registry != nil {
		mux.Handle("/metrics", metrics.HandlerFor(deps.Registry))
	}
	mux.Handle("/", deps.Gate.Middleware(app))

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      withRequestID(recoverer(logRequests(mux, s.logger), s.logger)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and serves until Shutdown.
// Returns http.ErrServerClosed when the server is shut down gracefully.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.probeManager.MarkInitialized()
	s.logger.Info("server listening", "address", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown performs graceful shutdown of the HTTP server.
//
// It:
//  1. Marks the server as shutting down (readiness probes will fail)
//  2. Disables HTTP keep-alives to stop accepting new requests
//  3. Waits for existing connections to drain (up to ShutdownTimeout)
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	s.logger.Info("draining connections", "timeout", s.shutdownTimeout.String())
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if !result.Status.Ready() {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Warn("failed to encode probe response", "error", err.Error())
	}
}

// handleLiveness serves GET /health/live. It is 200 even while shutting down.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeProbeResponse(w, s.probeManager.CheckLiveness(r.Context()), http.StatusOK)
}

// handleReadiness serves GET /health/ready: 503 while shutting down or
// while the record backend is unreachable.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeProbeResponse(w, s.probeManager.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

// handleStartup serves GET /health/startup.
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeProbeResponse(w, s.probeManager.CheckStartup(r.Context()), http.StatusServiceUnavailable)
}
