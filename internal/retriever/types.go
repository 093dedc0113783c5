package retriever

import (
	"context"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/reranker"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/documents"
)

// a vector match joined with its resolved chunk; lives for one request
type Candidate struct {
	Match      vectorindex.Match
	Importance float64
	Combined   float64
	Chunk      *documents.Chunk
}

// authoritative (project, owner) scope for every lookup
type Scope struct {
	ProjectID string
	OwnerID   string
}

// authoritative chunk store, scoped by project and owner
type ChunkLookup interface {
	GetChunk(ctx context.Context, chunkID, projectID, ownerID string) (*documents.Chunk, error)
	GetChunkByVectorID(ctx context.Context, vectorID, projectID, ownerID string) (*documents.Chunk, error)
}

type Reranker interface {
	Rerank(ctx context.Context, query string, docs []reranker.Document, topN int) ([]reranker.Result, error)
}

type Config struct {
	TopK int
	// nil means DefaultImportanceWeight; zero ranks on raw similarity alone
	ImportanceWeight *float64
	CallTimeout      time.Duration
}

type Retriever struct {
	embedder llm.Embedder
	index    vectorindex.Index
	chunks   ChunkLookup
	metrics  *metrics.Metrics
	config   Config
	weight   float64
}

type SkipReason string

const (
	SkipNotConfigured SkipReason = "not_configured"
	SkipFailed        SkipReason = "failed"
	SkipEmptyResult   SkipReason = "empty_result"
	SkipNoOverlap     SkipReason = "no_matching_ids"
	SkipNoCandidates  SkipReason = "no_candidates"
)

// result of the optional rerank stage. when Applied is false the
// candidates are the input order untouched and Reason says why.
type RerankOutcome struct {
	Candidates []Candidate
	Applied    bool
	Reason     SkipReason
	Err        error
}
