package log

import (
	"log/slog"
	"testing"
)

func TestLevelMatchesSlog(t *testing.T) {
	tests := []struct {
		level Level
		slog  slog.Level
		name  string
	}{
		{LevelDebug, slog.LevelDebug, "debug"},
		{LevelInfo, slog.LevelInfo, "info"},
		{LevelWarn, slog.LevelWarn, "warn"},
		{LevelError, slog.LevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.ToSlogLevel(); got != tt.slog {
				t.Errorf("ToSlogLevel() = %v, want %v", got, tt.slog)
			}
			if got := tt.level.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := ParseLevel(tt.name); got != tt.level {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.level)
			}
		})
	}
}

func TestParseLevelLenient(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"DEBUG", LevelDebug},
		{" warning ", LevelWarn},
		{"Error", LevelError},
		{"trace", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
