package config

import "time"

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string // optional: locks and rate limits fall back to memory
	JWTSecret   string
	CORSOrigins []string

	OpenAIKey      string
	EmbeddingModel string
	EmbeddingDim   int

	GeneratorProvider string // "openai" or "anthropic"
	GeneratorModel    string
	AnthropicKey      string

	RerankerEnabled bool
	RerankerAPIKey  string
	RerankerModel   string

	// ulule/limiter formatted rate, e.g. "20-M"
	MessageRateLimit string

	Pipeline Pipeline
}

// tuning knobs for the retrieval pipeline and chunker
type Pipeline struct {
	TopK             int           `yaml:"top_k"`
	ImportanceWeight float64       `yaml:"importance_weight"`
	ContextLimit     int           `yaml:"context_limit"`
	EvidenceLimit    int           `yaml:"evidence_limit"`
	RerankMaxDocs    int           `yaml:"rerank_max_docs"`
	RerankTopN       int           `yaml:"rerank_top_n"`
	CallTimeout      time.Duration `yaml:"call_timeout"`
	ChunkWindow      int           `yaml:"chunk_window"`
	ChunkMaxChars    int           `yaml:"chunk_max_chars"`
}
