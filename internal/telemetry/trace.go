package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartGateSpan creates a span for one access gate evaluation.
//
// Usage:
//
//	ctx, span := telemetry.StartGateSpan(ctx, r.URL.Path)
//	defer span.End()
func StartGateSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer("gate").Start(ctx, "gate.decide")
	span.SetAttributes(
		attribute.String("http.path", path),
		attribute.String("component", "gate"),
	)
	return ctx, span
}

// StartLookupSpan creates a span for a single role record lookup
// ("users" or "team_members").
func StartLookupSpan(ctx context.Context, table string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer("role").Start(ctx, "role.lookup."+table)
	span.SetAttributes(
		attribute.String("table", table),
		attribute.String("component", "role"),
	)
	return ctx, span
}

// StartBackendSpan creates a span for a backend HTTP operation such as
// "exists", "rpc" or "auth.user".
func StartBackendSpan(ctx context.Context, operation, target string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer("backend").Start(ctx, "backend."+operation)
	span.SetAttributes(
		attribute.String("operation", operation),
		attribute.String("target", target),
		attribute.String("component", "backend"),
	)
	return ctx, span
}

// StartCronSpan creates a span for a scheduled job invocation.
func StartCronSpan(ctx context.Context, job string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer("cron").Start(ctx, "cron."+job)
	span.SetAttributes(
		attribute.String("job", job),
		attribute.String("component", "cron"),
	)
	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(attribute.Int64(name+"_ms", duration.Milliseconds()))
}
