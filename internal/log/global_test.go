package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	prevLogger := defaultLogger.Load()
	prevSlog := slog.Default()
	t.Cleanup(func() {
		defaultLogger.Store(prevLogger)
		slog.SetDefault(prevSlog)
	})
}

func TestSetDefaultLogger(t *testing.T) {
	restoreDefault(t)

	var buf bytes.Buffer
	custom := newBufferLogger(&buf, LevelInfo)
	SetDefaultLogger(custom)

	if DefaultLogger() != custom {
		t.Fatal("DefaultLogger did not return the installed logger")
	}

	slog.Info("from the standard library")
	if !strings.Contains(buf.String(), "from the standard library") {
		t.Errorf("slog default not redirected, got: %s", buf.String())
	}
}

func TestDefaultLoggerLazy(t *testing.T) {
	restoreDefault(t)
	defaultLogger.Store(nil)

	first := DefaultLogger()
	if first == nil {
		t.Fatal("expected a fallback logger")
	}
	if DefaultLogger() != first {
		t.Error("fallback logger should be created once")
	}
	if first.Config().Level != LevelInfo {
		t.Errorf("fallback level = %v, want info", first.Config().Level)
	}
}
