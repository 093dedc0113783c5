package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEmbeddingModel   = "text-embedding-3-large"
	defaultEmbeddingDim     = 1024
	defaultOpenAIGenerator  = "gpt-4o"
	defaultClaudeGenerator  = "claude-sonnet-4-20250514"
	defaultRerankerModel    = "bge-reranker-v2-m3"
	defaultMessageRateLimit = "20-M"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	openaiKey := os.Getenv("OPENAI_API_KEY")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if openaiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	environment := getenvDefault("ENVIRONMENT", "development")

	embeddingDim := defaultEmbeddingDim
	if raw := os.Getenv("EMBEDDING_DIM"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val < 1 {
			return nil, fmt.Errorf("EMBEDDING_DIM must be a positive integer, got %q", raw)
		}

		embeddingDim = val
	}

	provider := strings.ToLower(getenvDefault("GENERATOR_PROVIDER", "openai"))
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")

	var generatorModel string

	switch provider {
	case "openai":
		generatorModel = getenvDefault("GENERATOR_MODEL", defaultOpenAIGenerator)
	case "anthropic":
		if anthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required for the anthropic generator")
		}

		generatorModel = getenvDefault("GENERATOR_MODEL", defaultClaudeGenerator)
	default:
		return nil, fmt.Errorf("unsupported GENERATOR_PROVIDER: %s", provider)
	}

	rerankerEnabled := parseBool(os.Getenv("RERANKER_ENABLED"))
	rerankerKey := os.Getenv("RERANKER_API_KEY")

	if rerankerEnabled && rerankerKey == "" {
		return nil, fmt.Errorf("RERANKER_API_KEY environment variable is required when RERANKER_ENABLED is set")
	}

	pipeline, err := LoadPipelineFile(os.Getenv("PIPELINE_CONFIG"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:       environment,
		Port:              getenvDefault("PORT", "8080"),
		DatabaseURL:       databaseURL,
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         jwtSecret,
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
		OpenAIKey:         openaiKey,
		EmbeddingModel:    getenvDefault("EMBEDDING_MODEL", defaultEmbeddingModel),
		EmbeddingDim:      embeddingDim,
		GeneratorProvider: provider,
		GeneratorModel:    generatorModel,
		AnthropicKey:      anthropicKey,
		RerankerEnabled:   rerankerEnabled,
		RerankerAPIKey:    rerankerKey,
		RerankerModel:     getenvDefault("RERANKER_MODEL", defaultRerankerModel),
		MessageRateLimit:  getenvDefault("MESSAGE_RATE_LIMIT", defaultMessageRateLimit),
		Pipeline:          pipeline,
	}, nil
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

// accepts the truthy spellings browsers and shells tend to send
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	}

	return false
}

func splitList(raw string) []string {
	var out []string

	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
