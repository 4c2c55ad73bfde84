package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration: in-memory store, mock-free
// OpenAI provider, and the stock pipeline tuning.
func Default() Config {
	return Config{
		Server: Server{
			Listen:          ":8080",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Pipeline: Pipeline{
			MaxRetries:         3,
			CriticThreshold:    7.0,
			GenerationTimeout:  Duration(300 * time.Second),
			RateLimitPerMinute: 60,
		},
		Model: Model{
			Provider: "openai",
		},
		Store: Store{
			Backend: "memory",
		},
		Observability: Observability{
			LogLevel: "info",
		},
	}
}

// Load reads a YAML config file over the defaults, applies environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault searches standard locations for a config file and loads the
// first one found. With no file present, the built-in defaults plus
// environment overrides are used.
//
// Search order: ./arcsys.yaml, ~/.arcsys/config.yaml
func LoadDefault() (Config, error) {
	candidates := []string{"arcsys.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".arcsys", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over file values. The API key is
// environment-only so it never lands in a config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ARCSYS_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("ARCSYS_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("ARCSYS_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
	if v := os.Getenv("ARCSYS_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("ARCSYS_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("ARCSYS_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("ARCSYS_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("ARCSYS_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}
