package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providerMu.Lock()
	previous := globalProvider
	globalProvider = tp
	providerMu.Unlock()

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		providerMu.Lock()
		globalProvider = previous
		providerMu.Unlock()
	})

	return exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value.Emit(), true
		}
	}
	return "", false
}

func TestSpanStarters(t *testing.T) {
	tests := []struct {
		name      string
		start     func(context.Context) (context.Context, trace.Span)
		wantName  string
		wantAttr  string
		wantValue string
	}{
		{
			name: "gate",
			start: func(ctx context.Context) (context.Context, trace.Span) {
				c, s := StartGateSpan(ctx, "/dashboard/team")
				return c, s
			},
			wantName:  "gate.decide",
			wantAttr:  "http.path",
			wantValue: "/dashboard/team",
		},
		{
			name: "lookup",
			start: func(ctx context.Context) (context.Context, trace.Span) {
				c, s := StartLookupSpan(ctx, "team_members")
				return c, s
			},
			wantName:  "role.lookup.team_members",
			wantAttr:  "table",
			wantValue: "team_members",
		},
		{
			name: "backend",
			start: func(ctx context.Context) (context.Context, trace.Span) {
				c, s := StartBackendSpan(ctx, "rpc", "generate_recurring_tasks")
				return c, s
			},
			wantName:  "backend.rpc",
			wantAttr:  "target",
			wantValue: "generate_recurring_tasks",
		},
		{
			name: "cron",
			start: func(ctx context.Context) (context.Context, trace.Span) {
				c, s := StartCronSpan(ctx, "generate-tasks")
				return c, s
			},
			wantName:  "cron.generate-tasks",
			wantAttr:  "job",
			wantValue: "generate-tasks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := setupTestTracer(t)
			ctx := context.Background()

			spanCtx, span := tt.start(ctx)
			assert.NotEqual(t, ctx, spanCtx, "expected derived context")
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantName, spans[0].Name)

			got, ok := attrValue(spans[0].Attributes, tt.wantAttr)
			require.True(t, ok, "missing attribute %s", tt.wantAttr)
			assert.Equal(t, tt.wantValue, got)
		})
	}
}

func TestRecordSuccess(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartGateSpan(context.Background(), "/dashboard")
	RecordSuccess(span, attribute.String("action", "allow"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	got, _ := attrValue(spans[0].Attributes, "action")
	assert.Equal(t, "allow", got)
}

func TestRecordError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartLookupSpan(context.Background(), "users")
	RecordError(span, errors.New("connection refused"))
	RecordError(span, nil)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "connection refused", spans[0].Status.Description)
	assert.Len(t, spans[0].Events, 1)
}

func TestRecordDuration(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartBackendSpan(context.Background(), "exists", "users")
	RecordDuration(span, "lookup", 1500*time.Millisecond)
	span.End()

	got, ok := attrValue(exporter.GetSpans()[0].Attributes, "lookup_ms")
	require.True(t, ok)
	assert.Equal(t, "1500", got)
}
