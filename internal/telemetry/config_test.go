package telemetry

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceName != "pmos" {
		t.Errorf("ServiceName = %q, want pmos", cfg.ServiceName)
	}
	if cfg.Enabled {
		t.Error("tracing should be disabled by default")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.SampleRate)
	}
}

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		version     string
		wantEnv     string
		wantVersion string
	}{
		{"explicit", "staging", "0.4.1", "staging", "0.4.1"},
		{"defaults kept", "", "", "development", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromSettings(true, "otel-collector:4318", true, 0.25, tt.environment, tt.version)

			if !cfg.Enabled || !cfg.Insecure {
				t.Errorf("flags not carried: %+v", cfg)
			}
			if cfg.Endpoint != "otel-collector:4318" {
				t.Errorf("Endpoint = %q", cfg.Endpoint)
			}
			if cfg.SampleRate != 0.25 {
				t.Errorf("SampleRate = %v", cfg.SampleRate)
			}
			if cfg.Environment != tt.wantEnv {
				t.Errorf("Environment = %q, want %q", cfg.Environment, tt.wantEnv)
			}
			if cfg.ServiceVersion != tt.wantVersion {
				t.Errorf("ServiceVersion = %q, want %q", cfg.ServiceVersion, tt.wantVersion)
			}
		})
	}
}
