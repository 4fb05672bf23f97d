// Package cron serves the recurring-task generation endpoint. It is called by
// an external scheduler, authenticates with a shared secret instead of a
// session, and asks the backend to materialize due recurring tasks.
package cron

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/pmos/internal/backend"
	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/log"
	"github.com/felixgeelhaar/pmos/internal/metrics"
	"github.com/felixgeelhaar/pmos/internal/telemetry"
)

const (
	// Procedure is the stored procedure that materializes recurring tasks.
	Procedure = "generate_recurring_tasks"

	// DefaultSignatureHeader is sent by the hosting platform's scheduler.
	// Its presence bypasses the secret check.
	DefaultSignatureHeader = "x-vercel-signature"

	// SuccessMessage is returned with every successful run.
	SuccessMessage = "Recurring tasks generated successfully"

	internalErrorMessage = "Internal server error"
)

// Generator invokes backend procedures.
type Generator interface {
	RPC(ctx context.Context, fn string, args any) (json.RawMessage, error)
}

// Config configures a Handler.
type Config struct {
	// Secret is the shared secret. Empty accepts every request.
	Secret string

	// SignatureHeader overrides DefaultSignatureHeader
	SignatureHeader string

	// Procedure overrides the procedure name
	Procedure string

	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// Response is the success body.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves GET and POST on the generation endpoint.
type Handler struct {
	gen             Generator
	secret          string
	signatureHeader string
	procedure       string
	logger          *log.Logger
	metrics         *metrics.Metrics
}

// NewHandler creates a Handler backed by gen.
func NewHandler(gen Generator, cfg Config) *Handler {
	h := &Handler{
		gen:             gen,
		secret:          cfg.Secret,
		signatureHeader: cfg.SignatureHeader,
		procedure:       cfg.Procedure,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
	}
	if h.signatureHeader == "" {
		h.signatureHeader = DefaultSignatureHeader
	}
	if h.procedure == "" {
		h.procedure = Procedure
	}
	if h.logger == nil {
		h.logger = log.Discard()
	}
	h.logger = h.logger.With("component", "cron")
	return h
}

// Authorized reports whether r passes the secret check: no secret is
// configured, the scheduler signature header is present, or the
// Authorization header is exactly "Bearer <secret>".
func (h *Handler) Authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	if r.Header.Get(h.signatureHeader) != "" {
		return true
	}
	want := []byte("Bearer " + h.secret)
	got := []byte(r.Header.Get("Authorization"))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Run invokes the procedure once. Procedure errors reported by the backend
// are returned as CRON-002 errors wrapping the *backend.APIError.
func (h *Handler) Run(ctx context.Context) (json.RawMessage, error) {
	ctx, span := telemetry.StartCronSpan(ctx, h.procedure)
	defer span.End()

	data, err := h.gen.RPC(ctx, h.procedure, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		var apiErr *backend.APIError
		if stderrors.As(err, &apiErr) {
			return nil, errors.Wrap(errors.ErrCodeCronProcedureFailed, apiErr.Message, err).
				WithSuggestion("Check that the generate_recurring_tasks function is deployed to the backend")
		}
		return nil, err
	}
	telemetry.RecordSuccess(span)

	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return data, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	start := time.Now()
	ctx := r.Context()

	if !h.Authorized(r) {
		h.metrics.ObserveCron("unauthorized", time.Since(start))
		h.logger.WithContext(ctx).WarnContext(ctx, "rejected cron request", "remote_addr", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	data, err := h.safeRun(ctx)
	switch {
	case err == nil:
		h.metrics.ObserveCron("success", time.Since(start))
		h.logger.WithContext(ctx).InfoContext(ctx, "recurring tasks generated", "duration_ms", time.Since(start).Milliseconds())
		writeJSON(w, http.StatusOK, Response{Success: true, Message: SuccessMessage, Data: data})

	case errors.HasCode(err, errors.ErrCodeCronProcedureFailed):
		h.metrics.ObserveCron("procedure_error", time.Since(start))
		h.metrics.ObserveError(string(errors.ErrCodeCronProcedureFailed), "cron")
		h.logger.LogErrorContext(ctx, "error generating recurring tasks", err)
		var coded *errors.Error
		stderrors.As(err, &coded)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: coded.Message})

	default:
		h.metrics.ObserveCron("internal_error", time.Since(start))
		h.metrics.ObserveError(string(errors.CodeOf(err)), "cron")
		h.logger.LogErrorContext(ctx, "unexpected error generating recurring tasks", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
	}
}

func (h *Handler) safeRun(ctx context.Context) (data json.RawMessage, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during generation: %v", p)
		}
	}()
	return h.Run(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
