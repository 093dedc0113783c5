package llm

import (
	"context"
	"errors"
)

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// returned when the embedding service answers with vectors of a different
// length than configured. never retried: it means the model and index disagree.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// turns text into fixed-length vectors, same order and length as the input
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// completes a chat transcript
type TextGenerator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
