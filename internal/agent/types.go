package agent

import (
	"context"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/retriever"
	"codeberg.org/kbase/server/knowledge/conversations"
)

// conversation persistence needed by the message pipeline
type ConversationStore interface {
	Get(ctx context.Context, conversationID, ownerID string) (*conversations.Conversation, error)
	AddMessage(ctx context.Context, conversationID, role, content string, meta map[string]any) (*conversations.Message, error)
}

// embeds, searches, ranks and resolves candidates for a question
type Retriever interface {
	Retrieve(ctx context.Context, scope retriever.Scope, query string) ([]retriever.Candidate, error)
}

type Config struct {
	ContextLimit  int // candidates rendered into the prompt
	EvidenceLimit int // candidates reported back as evidence
	RerankMaxDocs int
	RerankTopN    int
	CallTimeout   time.Duration
}

// orchestrates retrieval-augmented answers for conversation messages
type Agent struct {
	conversations ConversationStore
	retriever     Retriever
	reranker      retriever.Reranker // nil when reranking is not configured
	generator     llm.TextGenerator
	metrics       *metrics.Metrics
	config        Config
}

type SendRequest struct {
	ConversationID string
	OwnerID        string
	Message        string
	UseReranker    bool
}

type SendResponse struct {
	MessageID     string     `json:"message_id"`
	Answer        string     `json:"answer"`
	Evidence      []Evidence `json:"evidence_top5"`
	UseReranker   bool       `json:"use_reranker"`
	RerankSkipped string     `json:"rerank_skipped,omitempty"`
}

// source chunk backing an answer
type Evidence struct {
	ChunkID       string   `json:"kb_chunk_id"`
	VectorID      string   `json:"vector_id"`
	DocumentID    string   `json:"document_id"`
	DocumentTitle string   `json:"doc_title"`
	ChunkIndex    int      `json:"chunk_index"`
	Importance    int      `json:"importance"`
	Tags          []string `json:"tags"`
	Score         float64  `json:"score"`
	TextPreview   string   `json:"text_preview"`
}
