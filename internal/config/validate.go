package config

import "fmt"

var (
	validProviders = map[string]bool{"openai": true, "anthropic": true, "google": true, "mock": true}
	validBackends  = map[string]bool{"memory": true, "sqlite": true, "mysql": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the configuration for values the process cannot start
// with. Called once after loading.
func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}

	if c.Pipeline.MaxRetries < 1 {
		return fmt.Errorf("pipeline.max_retries must be at least 1, got %d", c.Pipeline.MaxRetries)
	}
	if c.Pipeline.CriticThreshold < 0 || c.Pipeline.CriticThreshold > 10 {
		return fmt.Errorf("pipeline.critic_threshold must be in [0,10], got %v", c.Pipeline.CriticThreshold)
	}
	if c.Pipeline.GenerationTimeout < 0 {
		return fmt.Errorf("pipeline.generation_timeout must not be negative")
	}
	if c.Pipeline.RateLimitPerMinute < 1 {
		return fmt.Errorf("pipeline.rate_limit_per_minute must be at least 1, got %d", c.Pipeline.RateLimitPerMinute)
	}

	if !validProviders[c.Model.Provider] {
		return fmt.Errorf("model.provider must be one of openai, anthropic, google, mock; got %q", c.Model.Provider)
	}
	if c.Model.Provider != "mock" && c.Model.APIKey == "" {
		return fmt.Errorf("ARCSYS_API_KEY is required for provider %q", c.Model.Provider)
	}

	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("store.backend must be one of memory, sqlite, mysql; got %q", c.Store.Backend)
	}
	if c.Store.Backend != "memory" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for backend %q", c.Store.Backend)
	}

	if !validLogLevels[c.Observability.LogLevel] {
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error; got %q", c.Observability.LogLevel)
	}

	return nil
}
