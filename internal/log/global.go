package log

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger installs logger as the process logger. It also becomes
// slog's default, so the standard library log package and http.Server
// error output end up in the same stream.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
	slog.SetDefault(logger.Slog())
}

// DefaultLogger returns the process logger, or a production logger on
// stderr when none was installed.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := New(ProductionConfig())
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	return defaultLogger.Load()
}
