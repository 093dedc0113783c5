package indexer

import (
	"context"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
)

type ProjectStore interface {
	Get(ctx context.Context, projectID, ownerID string) (*projects.Project, error)
}

type ChunkStore interface {
	ListIndexable(ctx context.Context, f documents.IndexableFilter) ([]documents.Chunk, error)
	MarkIndexed(ctx context.Context, ownerID, model string, dim int, chunks []documents.IndexedChunk) error
}

type Request struct {
	ProjectID string
	OwnerID   string
	Limit     int
	BatchSize int
	Force     bool
}

type Result struct {
	IndexedCount int  `json:"indexed_count"`
	Limit        int  `json:"limit"`
	BatchSize    int  `json:"batch_size"`
	Force        bool `json:"force"`
}

// called after each committed batch
type ProgressFunc func(done, total int)

type Config struct {
	CallTimeout time.Duration
	LockTTL     time.Duration
}

// embeds pending chunks, upserts them into the vector index and records
// their indexing state, one batch at a time
type Indexer struct {
	projects ProjectStore
	chunks   ChunkStore
	embedder llm.Embedder
	index    vectorindex.Index
	locker   locks.Locker
	metrics  *metrics.Metrics
	config   Config
}
