package telemetry

// Config describes the tracer provider.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Environment becomes the deployment.environment resource attribute
	Environment string

	// Enabled false installs a no-op provider.
	Enabled bool

	// Endpoint is the OTLP/HTTP collector (host:port). Empty records spans
	// without exporting them.
	Endpoint string
	Insecure bool

	// SampleRate is the fraction of root spans sampled; 1 samples all.
	SampleRate float64
}

// DefaultConfig has tracing disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "pmos",
		ServiceVersion: "dev",
		Environment:    "development",
		SampleRate:     1.0,
	}
}

// FromSettings builds a Config from the telemetry section of pmos.yaml.
// An empty environment keeps the default.
func FromSettings(enabled bool, endpoint string, insecure bool, sampleRate float64, environment, version string) Config {
	cfg := DefaultConfig()
	cfg.Enabled = enabled
	cfg.Endpoint = endpoint
	cfg.Insecure = insecure
	cfg.SampleRate = sampleRate
	if environment != "" {
		cfg.Environment = environment
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}
