package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

func newBufferLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{
		Level:  level,
		Format: FormatJSON,
		Output: NewOutput(buf),
	})
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestDefaultConstructors(t *testing.T) {
	tests := []struct {
		name     string
		newFunc  func() *Logger
		wantFunc func(Config) bool
	}{
		{
			name:    "Default",
			newFunc: Default,
			wantFunc: func(c Config) bool {
				return c.Level == LevelInfo && c.Format == FormatJSON
			},
		},
		{
			name:    "Development",
			newFunc: Development,
			wantFunc: func(c Config) bool {
				return c.Level == LevelDebug && c.Format == FormatText && c.AddSource
			},
		},
		{
			name:    "Production",
			newFunc: Production,
			wantFunc: func(c Config) bool {
				return c.Level == LevelInfo && c.Format == FormatJSON && !c.AddSource
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := tt.newFunc()
			if logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if !tt.wantFunc(logger.Config()) {
				t.Errorf("unexpected config: %+v", logger.Config())
			}
		})
	}
}

func TestServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	cfg := FromSettings("info", "json", "0.3.0")
	cfg.Output = NewOutput(&buf)

	New(cfg).Info("gate started")

	entry := decodeEntry(t, &buf)
	if entry["service"] != "pmos" {
		t.Errorf("expected service pmos, got %v", entry["service"])
	}
	if entry["version"] != "0.3.0" {
		t.Errorf("expected version 0.3.0, got %v", entry["version"])
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected no output for debug/info at warn level, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected output for warn message")
	}
}

func TestTextFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: NewOutput(&buf)})

	logger.Info("route classified", "path", "/dashboard")

	output := buf.String()
	if !strings.Contains(output, "route classified") || !strings.Contains(output, "path=/dashboard") {
		t.Errorf("unexpected text output: %s", output)
	}
}

func TestWithAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo).With("component", "gate").WithGroup("decision")

	logger.Info("allowed", "action", "allow")

	entry := decodeEntry(t, &buf)
	if entry["component"] != "gate" {
		t.Errorf("expected component gate, got %v", entry["component"])
	}
	group, ok := entry["decision"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected decision group, got %v", entry["decision"])
	}
	if group["action"] != "allow" {
		t.Errorf("expected action allow, got %v", group["action"])
	}
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:    "plain error",
			err:     fmt.Errorf("connection reset"),
			wantMsg: "connection reset",
		},
		{
			name:     "coded error",
			err:      errors.NewLookupFailedError("users", fmt.Errorf("timeout")),
			wantCode: "ROLE-002",
			wantMsg:  "role lookup failed against users",
		},
		{
			name:     "wrapped coded error",
			err:      fmt.Errorf("classify: %w", errors.NewProviderUnavailableError(nil)),
			wantCode: "AUTH-002",
			wantMsg:  "identity provider unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newBufferLogger(&buf, LevelInfo).WithError(tt.err).Info("request failed")

			entry := decodeEntry(t, &buf)
			if entry["error"] != tt.wantMsg {
				t.Errorf("expected error %q, got %v", tt.wantMsg, entry["error"])
			}
			if tt.wantCode == "" {
				if _, ok := entry["error_code"]; ok {
					t.Errorf("plain errors should not carry error_code")
				}
				return
			}
			if entry["error_code"] != tt.wantCode {
				t.Errorf("expected error_code %s, got %v", tt.wantCode, entry["error_code"])
			}
			if _, ok := entry["suggestions"]; !ok {
				t.Error("expected suggestions for coded error")
			}
		})
	}
}

func TestWithErrorNil(t *testing.T) {
	logger := Discard()
	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.Wrap(errors.ErrCodeBackendRequest, "rpc generate_recurring_tasks", fmt.Errorf("dial tcp: refused")).
		WithDocs("https://github.com/felixgeelhaar/pmos#backend")

	newBufferLogger(&buf, LevelInfo).LogError("cron run failed", err)

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "cron run failed" {
		t.Errorf("expected msg, got %v", entry["msg"])
	}
	if entry["error_code"] != "BACKEND-001" {
		t.Errorf("expected BACKEND-001, got %v", entry["error_code"])
	}
	if entry["cause"] != "dial tcp: refused" {
		t.Errorf("expected cause, got %v", entry["cause"])
	}
	if entry["docs_url"] == nil {
		t.Error("expected docs_url")
	}
}

func TestLogErrorNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo)

	logger.LogError("nothing", nil)
	logger.LogErrorContext(context.Background(), "nothing", nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output for nil error, got: %s", buf.String())
	}
}

func TestWithContextCorrelation(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithUserID(ctx, "user-7")

	newBufferLogger(&buf, LevelInfo).LogErrorContext(ctx, "lookup failed", fmt.Errorf("boom"))

	entry := decodeEntry(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id, got %v", entry["request_id"])
	}
	if entry["user_id"] != "user-7" {
		t.Errorf("expected user_id, got %v", entry["user_id"])
	}
	if RequestIDFromContext(ctx) != "req-123" {
		t.Errorf("RequestIDFromContext mismatch")
	}
}

func TestWithContextEmpty(t *testing.T) {
	logger := Discard()
	if logger.WithContext(context.Background()) != logger {
		t.Error("WithContext without values should return the same logger")
	}
}

func TestEnabled(t *testing.T) {
	logger := New(Config{Level: LevelWarn, Format: FormatJSON, Output: NewOutput(&bytes.Buffer{})})
	ctx := context.Background()

	if logger.Enabled(ctx, LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestSlogAccessors(t *testing.T) {
	logger := Discard()
	if logger.Slog() == nil || logger.Handler() == nil {
		t.Error("expected underlying slog logger and handler")
	}
}
