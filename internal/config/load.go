package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/route"
)

// envBindings maps configuration keys to the environment variables that set
// them, first match wins. The NEXT_PUBLIC_ names are what the web
// application already exports.
var envBindings = map[string][]string{
	"server.address":          {"PMOS_ADDR", "PMOS_SERVER_ADDRESS"},
	"server.upstream_url":     {"PMOS_UPSTREAM_URL"},
	"backend.driver":          {"PMOS_BACKEND_DRIVER"},
	"backend.url":             {"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"},
	"backend.anon_key":        {"SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"},
	"backend.service_key":     {"SUPABASE_SERVICE_ROLE_KEY"},
	"backend.sqlite_path":     {"PMOS_SQLITE_PATH"},
	"auth.jwt_secret":         {"SUPABASE_JWT_SECRET"},
	"cron.secret":             {"CRON_SECRET"},
	"gate.page_guards":        {"PMOS_PAGE_GUARDS"},
	"gate.manager_sections":   {"PMOS_MANAGER_SECTIONS"},
	"auth.cookie_name":        {"PMOS_COOKIE_NAME"},
	"log.level":               {"PMOS_LOG_LEVEL"},
	"log.format":              {"PMOS_LOG_FORMAT"},
	"telemetry.enabled":       {"PMOS_TRACING_ENABLED"},
	"telemetry.endpoint":      {"PMOS_TRACING_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"},
	"telemetry.insecure":      {"PMOS_TRACING_INSECURE"},
	"telemetry.sample_rate":   {"PMOS_TRACING_SAMPLE_RATE"},
	"telemetry.environment":   {"PMOS_ENVIRONMENT"},
	"gate.lookup_timeout":     {"PMOS_LOOKUP_TIMEOUT"},
	"cron.signature_header":   {"PMOS_CRON_SIGNATURE_HEADER"},
	"server.shutdown_timeout": {"PMOS_SHUTDOWN_TIMEOUT"},
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":             "server.address",
	"upstream":         "server.upstream_url",
	"driver":           "backend.driver",
	"sqlite-path":      "backend.sqlite_path",
	"page-guards":      "gate.page_guards",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"shutdown-timeout": "server.shutdown_timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.upstream_url", "")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("backend.driver", DriverSupabase)
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.sqlite_path", filepath.Join(".pmos", "pmos.db"))

	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("auth.cookie_name", "sb-access-token")

	v.SetDefault("gate.page_guards", false)
	v.SetDefault("gate.lookup_timeout", 5*time.Second)
	v.SetDefault("gate.manager_sections", append([]string(nil), route.ManagerSections...))

	v.SetDefault("cron.signature_header", "x-vercel-signature")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// DefaultPaths are searched in order when no config file is given.
func DefaultPaths() []string {
	paths := []string{"pmos.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".pmos", "config.yaml"))
	}
	return paths
}

// Load reads configuration. path may be empty, in which case DefaultPaths
// are tried and a missing file is not an error. flags may be nil; flags that
// were set on the command line override everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to bind environment", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to bind flag "+name, err)
				}
			}
		}
	}

	file := path
	if file == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				file = p
				break
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to read config file "+file, err).
				WithSuggestion("Check the file exists and is valid YAML")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to decode configuration", err)
	}
	cfg.Backend.Driver = strings.ToLower(strings.TrimSpace(cfg.Backend.Driver))
	return &cfg, nil
}
