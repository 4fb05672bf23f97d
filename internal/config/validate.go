package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/route"
)

// DocsURL documents every configuration key.
const DocsURL = "https://github.com/felixgeelhaar/pmos#configuration"

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Address == "" {
		problems = append(problems, "server.address is required")
	}
	if c.Server.UpstreamURL != "" && !absoluteURL(c.Server.UpstreamURL) {
		problems = append(problems, fmt.Sprintf("server.upstream_url %q is not an absolute URL", c.Server.UpstreamURL))
	}

	switch c.Backend.Driver {
	case DriverSupabase:
		if c.Backend.URL == "" {
			problems = append(problems, "backend.url is required (SUPABASE_URL)")
		} else if !absoluteURL(c.Backend.URL) {
			problems = append(problems, fmt.Sprintf("backend.url %q is not an absolute URL", c.Backend.URL))
		}
		if c.Backend.AnonKey == "" && c.Backend.ServiceKey == "" {
			problems = append(problems, "backend.anon_key or backend.service_key is required")
		}
	case DriverSQLite:
		if c.Backend.SQLitePath == "" {
			problems = append(problems, "backend.sqlite_path is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("backend.driver %q must be %s or %s", c.Backend.Driver, DriverSupabase, DriverSQLite))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be json or text", c.Log.Format))
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		problems = append(problems, "telemetry.endpoint is required when tracing is enabled")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		problems = append(problems, "telemetry.sample_rate must be between 0 and 1")
	}
	if c.Gate.LookupTimeout < 0 {
		problems = append(problems, "gate.lookup_timeout must not be negative")
	}
	if len(route.TableFor(c.Gate.ManagerSections).ManagerPrefixes) == 0 {
		problems = append(problems, "gate.manager_sections must name at least one section")
	}

	if len(problems) == 0 {
		return nil
	}
	err := errors.NewConfigInvalidError(strings.Join(problems, "; ")).WithDocs(DocsURL)
	if c.Backend.Driver == DriverSupabase && c.Backend.URL == "" {
		err = err.WithSuggestion("For local development set backend.driver to sqlite (PMOS_BACKEND_DRIVER=sqlite)")
	}
	return err
}

func absoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
