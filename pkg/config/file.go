package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceConfig holds optional file-based service settings. Environment
// variables take precedence over values loaded from the file.
type ServiceConfig struct {
	Port     string         `yaml:"port"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// DatabaseConfig holds database settings from the config file
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// AuthConfig holds authentication settings from the config file
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LoadServiceConfig reads a YAML service config file. A missing file is not
// an error; it returns a zero config so env defaults apply.
func LoadServiceConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve returns the file value unless the environment variable is set.
func Resolve(envKey, fileValue, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}
