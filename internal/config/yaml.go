package config

import (
	"gopkg.in/yaml.v3"
)

// YAML renders the configuration with secrets redacted.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
