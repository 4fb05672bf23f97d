package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	// globalProvider holds the current tracer provider
	globalProvider trace.TracerProvider
	// globalShutdown holds the shutdown function for the provider
	globalShutdown func(context.Context) error
	// providerMu protects access to global provider state
	providerMu sync.RWMutex
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
)

// exportBreaker stops export attempts after repeated collector failures
// so an unreachable collector never slows the request path.
type exportBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openedAt  time.Time
	state     breakerState
	now       func() time.Time
}

func newExportBreaker() *exportBreaker {
	return &exportBreaker{
		threshold: 5,
		cooldown:  30 * time.Second,
		now:       time.Now,
	}
}

func (b *exportBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == breakerClosed {
		return true
	}
	// after the cooldown one probe export is let through
	return b.now().Sub(b.openedAt) > b.cooldown
}

func (b *exportBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = breakerClosed
}

func (b *exportBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold || b.state == breakerOpen {
		b.state = breakerOpen
		b.openedAt = b.now()
	}
}

// retryPolicy bounds export retries with exponential backoff
type retryPolicy struct {
	attempts   int
	initial    time.Duration
	max        time.Duration
	multiplier float64
}

var defaultRetryPolicy = retryPolicy{
	attempts:   4,
	initial:    100 * time.Millisecond,
	max:        2 * time.Second,
	multiplier: 1.5,
}

// retryingExporter wraps a span exporter with retries and a breaker
type retryingExporter struct {
	next    sdktrace.SpanExporter
	breaker *exportBreaker
	policy  retryPolicy
}

func newRetryingExporter(next sdktrace.SpanExporter) *retryingExporter {
	return &retryingExporter{
		next:    next,
		breaker: newExportBreaker(),
		policy:  defaultRetryPolicy,
	}
}

func (e *retryingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if !e.breaker.allow() {
		return fmt.Errorf("span export suspended after repeated failures")
	}

	wait := e.policy.initial
	var lastErr error
	for attempt := 1; attempt <= e.policy.attempts; attempt++ {
		if lastErr = e.next.ExportSpans(ctx, spans); lastErr == nil {
			e.breaker.success()
			return nil
		}
		if attempt == e.policy.attempts {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			e.breaker.failure()
			return ctx.Err()
		}
		wait = time.Duration(float64(wait) * e.policy.multiplier)
		if wait > e.policy.max {
			wait = e.policy.max
		}
	}

	e.breaker.failure()
	return fmt.Errorf("span export failed after %d attempts: %w", e.policy.attempts, lastErr)
}

func (e *retryingExporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}

// createResource creates an OTLP resource with service information
func createResource(cfg Config) (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithHost(),
		resource.WithOS(),
		resource.WithTelemetrySDK(),
	)
}

// InitProvider installs the process tracer provider used by the gate, the
// role lookups and backend calls. Returns a shutdown function.
func InitProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	providerMu.Lock()
	defer providerMu.Unlock()

	// If tracing is disabled, use noop provider
	if !cfg.Enabled {
		globalProvider = noop.NewTracerProvider()
		globalShutdown = func(context.Context) error { return nil }
		otel.SetTracerProvider(globalProvider)
		return globalShutdown, nil
	}

	// Create resource with service information
	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create tracer provider options
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	// Configure sampler based on sample rate
	if cfg.SampleRate < 1.0 && cfg.SampleRate >= 0 {
		opts = append(opts, sdktrace.WithSampler(
			sdktrace.TraceIDRatioBased(cfg.SampleRate),
		))
	} else {
		opts = append(opts, sdktrace.WithSampler(
			sdktrace.AlwaysSample(),
		))
	}

	// If endpoint is configured, set up OTLP exporter
	if cfg.Endpoint != "" {
		exporterOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}

		opts = append(opts, sdktrace.WithBatcher(
			newRetryingExporter(exporter),
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		))
	}

	// Create and set the global tracer provider
	tp := sdktrace.NewTracerProvider(opts...)
	globalProvider = tp
	otel.SetTracerProvider(tp)

	// Set up shutdown function
	globalShutdown = func(shutdownCtx context.Context) error {
		return tp.Shutdown(shutdownCtx)
	}

	return globalShutdown, nil
}

// Shutdown gracefully shuts down the tracer provider
func Shutdown(ctx context.Context) error {
	providerMu.RLock()
	shutdown := globalShutdown
	providerMu.RUnlock()

	if shutdown != nil {
		return shutdown(ctx)
	}
	return nil
}

// ForceFlush forces all pending spans to be exported
func ForceFlush(ctx context.Context) error {
	providerMu.RLock()
	provider := globalProvider
	providerMu.RUnlock()

	if tp, ok := provider.(*sdktrace.TracerProvider); ok {
		return tp.ForceFlush(ctx)
	}
	return nil
}

// GetTracerProvider returns the current global tracer provider
func GetTracerProvider() trace.TracerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()

	if globalProvider != nil {
		return globalProvider
	}
	return noop.NewTracerProvider()
}
