package llm

import (
	"fmt"

	"codeberg.org/kbase/server/internal/config"
)

type EmbedderConfig struct {
	APIKey    string
	Model     string // e.g., "text-embedding-3-large"
	Dimension int
	BaseURL   string // defaults to the public API
}

type GeneratorConfig struct {
	Provider    Provider
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	BaseURL     string
}

// derives the embedder settings from the service config
func EmbedderConfigFrom(cfg *config.Config) EmbedderConfig {
	return EmbedderConfig{
		APIKey:    cfg.OpenAIKey,
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDim,
	}
}

// derives the generator settings from the service config
func GeneratorConfigFrom(cfg *config.Config) (GeneratorConfig, error) {
	provider := Provider(cfg.GeneratorProvider)

	var apiKey string

	switch provider {
	case ProviderOpenAI:
		apiKey = cfg.OpenAIKey
	case ProviderAnthropic:
		apiKey = cfg.AnthropicKey
	default:
		return GeneratorConfig{}, fmt.Errorf("unsupported generator provider: %s", provider)
	}

	return GeneratorConfig{
		Provider: provider,
		APIKey:   apiKey,
		Model:    cfg.GeneratorModel,
	}, nil
}
