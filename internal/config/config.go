// Package config loads sorter configuration from an optional YAML file and
// environment variables. The reconciliation engine never touches this; the
// CLI resolves everything here and hands already-configured collaborators to
// the engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all sorter configuration.
type Config struct {
	Todoist    TodoistConfig    `yaml:"todoist"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// TodoistConfig configures the Todoist API client.
type TodoistConfig struct {
	APIToken string `yaml:"api_token"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// ClassifierConfig configures the LLM classifier.
type ClassifierConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{}
}

// Load reads a YAML config file and applies environment overrides. A missing
// file is not an error when path is empty (config is optional); an explicit
// path that does not exist is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Env beats file;
// CLI flags beat both (applied by the caller).
func (c *Config) applyEnv() {
	if token := os.Getenv("TODOIST_API_TOKEN"); token != "" {
		c.Todoist.APIToken = token
	}
	if provider := os.Getenv("TODOSORT_PROVIDER"); provider != "" {
		c.Classifier.Provider = provider
	}
	if model := os.Getenv("TODOSORT_MODEL"); model != "" {
		c.Classifier.Model = model
	}
	if c.Classifier.APIKey == "" {
		switch c.Classifier.Provider {
		case "gemini":
			c.Classifier.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			c.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// ParseTimeout parses a duration string, returning fallback when unset.
func ParseTimeout(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", value, err)
	}
	return d, nil
}
