package classify

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ProviderConfig holds the resolved provider and API key.
type ProviderConfig struct {
	Provider Provider
	APIKey   string
	Model    string // Optional model override
	BaseURL  string // Optional base URL override (OpenAI-compatible providers)
	Timeout  time.Duration
}

// DetectProvider resolves a provider from environment variables.
// Priority: OPENAI_API_KEY > GEMINI_API_KEY.
func DetectProvider() (*ProviderConfig, error) {
	providers := []struct {
		envVar   string
		provider Provider
	}{
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"GEMINI_API_KEY", ProviderGemini},
	}

	for _, p := range providers {
		if key := os.Getenv(p.envVar); key != "" {
			return &ProviderConfig{
				Provider: p.provider,
				APIKey:   key,
			}, nil
		}
	}

	return nil, fmt.Errorf("no API key found; set OPENAI_API_KEY or GEMINI_API_KEY")
}

// New creates a classifier for the configured provider.
func New(ctx context.Context, cfg *ProviderConfig) (Classifier, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		openaiCfg := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.Model != "" {
			openaiCfg.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			openaiCfg.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			openaiCfg.Timeout = cfg.Timeout
		}
		return NewOpenAIClassifierWithConfig(openaiCfg), nil
	case ProviderGemini:
		return NewGeminiClassifier(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
