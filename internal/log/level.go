package log

import (
	"log/slog"
	"strings"
)

// Level is a log severity. Values line up with slog's so a Level converts
// to slog.Level without a lookup table.
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// String returns the lower-case level name used in pmos.yaml.
func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// ToSlogLevel converts l to slog.Level.
func (l Level) ToSlogLevel() slog.Level {
	return slog.Level(l)
}

// ParseLevel parses a level name case-insensitively. "warning" is accepted
// for warn; anything unknown is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
