// Package config loads PMOS configuration from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"time"
)

// Backend drivers.
const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
)

// Config is the complete runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Gate      GateConfig      `mapstructure:"gate" yaml:"gate"`
	Cron      CronConfig      `mapstructure:"cron" yaml:"cron"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	UpstreamURL     string        `mapstructure:"upstream_url" yaml:"upstream_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// BackendConfig selects and configures the record backend.
type BackendConfig struct {
	Driver     string        `mapstructure:"driver" yaml:"driver"`
	URL        string        `mapstructure:"url" yaml:"url"`
	AnonKey    string        `mapstructure:"anon_key" yaml:"anon_key"`
	ServiceKey string        `mapstructure:"service_key" yaml:"service_key"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CACert     string        `mapstructure:"ca_cert" yaml:"ca_cert"`
	SQLitePath string        `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// AuthConfig configures session verification.
type AuthConfig struct {
	// JWTSecret enables local HS256 verification; empty asks the backend
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Audience  string `mapstructure:"audience" yaml:"audience"`

	// CookieName is the session cookie. Apps using the backend's SSR
	// helpers write sb-<project-ref>-auth-token, split into numbered
	// chunks when large; both forms are read.
	CookieName string `mapstructure:"cookie_name" yaml:"cookie_name"`
}

// GateConfig configures the access gate.
type GateConfig struct {
	PageGuards    bool          `mapstructure:"page_guards" yaml:"page_guards"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`

	// ManagerSections are the dashboard sections only manager-capable
	// roles may open, e.g. "vision" for /dashboard/vision.
	ManagerSections []string `mapstructure:"manager_sections" yaml:"manager_sections"`
}

// CronConfig configures the recurring-task endpoint.
type CronConfig struct {
	Secret          string `mapstructure:"secret" yaml:"secret"`
	SignatureHeader string `mapstructure:"signature_header" yaml:"signature_header"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	Environment string  `mapstructure:"environment" yaml:"environment"`
}

const redacted = "********"

// Redacted returns a copy with secrets masked. Empty secrets stay empty so
// the output still shows what is unset.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	c.Backend.AnonKey = mask(c.Backend.AnonKey)
	c.Backend.ServiceKey = mask(c.Backend.ServiceKey)
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	c.Cron.Secret = mask(c.Cron.Secret)
	return c
}
