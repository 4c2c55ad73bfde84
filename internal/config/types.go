// Package config loads and validates process configuration from YAML with
// environment overrides. Configuration is read once at startup and treated
// as immutable for the process lifetime.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Server        Server        `yaml:"server"`
	Pipeline      Pipeline      `yaml:"pipeline"`
	Model         Model         `yaml:"model"`
	Store         Store         `yaml:"store"`
	Observability Observability `yaml:"observability"`
}

// Server configures the HTTP listener.
type Server struct {
	Listen          string   `yaml:"listen"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Pipeline configures the analysis workflow.
type Pipeline struct {
	// MaxRetries is the iteration ceiling for the critic retry loop.
	MaxRetries int `yaml:"max_retries"`

	// CriticThreshold is the minimum acceptable quality score on a 0-10 scale.
	CriticThreshold float64 `yaml:"critic_threshold"`

	// GenerationTimeout bounds each external generation call.
	GenerationTimeout Duration `yaml:"generation_timeout"`

	// RateLimitPerMinute bounds concurrent generation calls across all runs.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

// Model selects and configures the generation provider.
type Model struct {
	// Provider is one of: openai, anthropic, google, mock.
	Provider string `yaml:"provider"`

	// Name is the provider-specific model identifier. Empty selects the
	// provider's default.
	Name string `yaml:"name"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	BaseURL string `yaml:"base_url"`

	// APIKey is never read from YAML; set via the ARCSYS_API_KEY
	// environment variable.
	APIKey string `yaml:"-"`
}

// Store selects the run-history persistence backend.
type Store struct {
	// Backend is one of: memory, sqlite, mysql.
	Backend string `yaml:"backend"`

	// DSN is the backend connection string (file path for sqlite).
	DSN string `yaml:"dsn"`
}

// Observability configures logging and tracing.
type Observability struct {
	// Tracing enables span emission for pipeline steps.
	Tracing bool `yaml:"tracing"`

	// LogLevel is one of: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogJSON switches log output from text to JSON lines.
	LogJSON bool `yaml:"log_json"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "300s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"300s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
