package llm

import "fmt"

// creates the embedding client. a missing key or dimension is a configuration
// error and fails here rather than on the first request.
func NewEmbedder(cfg EmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedder API key is required")
	}

	if cfg.Dimension < 1 {
		return nil, fmt.Errorf("embedder dimension must be positive, got %d", cfg.Dimension)
	}

	return NewOpenAIEmbedder(cfg), nil
}

// creates the chat model client for the configured provider
func NewTextGenerator(cfg GeneratorConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
}
