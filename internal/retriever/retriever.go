package retriever

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/logger"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/retry"
	"codeberg.org/kbase/server/internal/vectorindex"
)

const (
	DefaultTopK        = 30
	DefaultCallTimeout = 30 * time.Second
)

func New(embedder llm.Embedder, index vectorindex.Index, chunks ChunkLookup, m *metrics.Metrics, config Config) *Retriever {
	if config.TopK < 1 {
		config.TopK = DefaultTopK
	}

	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultCallTimeout
	}

	weight := DefaultImportanceWeight
	if config.ImportanceWeight != nil {
		weight = *config.ImportanceWeight
	}

	return &Retriever{
		embedder: embedder,
		index:    index,
		chunks:   chunks,
		metrics:  m,
		config:   config,
		weight:   weight,
	}
}

// embeds the query, searches the owner's namespace filtered to the project,
// ranks by combined score and resolves every hit against the chunk store
func (r *Retriever) Retrieve(ctx context.Context, scope Scope, query string) ([]Candidate, error) {
	started := time.Now()

	var vector []float32

	err := r.withRetry(ctx, "embed", func(ctx context.Context) error {
		vectors, err := r.embedder.Embed(ctx, []string{query})
		if err != nil {
			return err
		}

		if len(vectors) != 1 {
			return fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
		}

		vector = vectors[0]

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	r.metrics.ObserveStage("embed", started)
	started = time.Now()

	var matches []vectorindex.Match

	err = r.withRetry(ctx, "query", func(ctx context.Context) error {
		var err error

		matches, err = r.index.Query(ctx, scope.OwnerID, vectorindex.Query{
			Vector:          vector,
			Filter:          map[string]any{"project_id": scope.ProjectID},
			TopK:            r.config.TopK,
			IncludeMetadata: true,
		})

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	r.metrics.ObserveStage("query", started)
	started = time.Now()

	ranked := Rank(matches, r.weight)

	resolved, dropped, err := Resolve(ctx, r.chunks, scope, ranked)
	if err != nil {
		return nil, err
	}

	r.metrics.ObserveStage("resolve", started)
	r.metrics.DroppedEvidence(dropped)

	if dropped > 0 {
		logger.FromContext(ctx).Debug("discarded unresolvable matches",
			"project_id", scope.ProjectID,
			"dropped", dropped,
			"kept", len(resolved),
		)
	}

	return resolved, nil
}

func (r *Retriever) withRetry(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, r.config.CallTimeout, func(err error) {
		r.metrics.Retry(stage)
		logger.FromContext(ctx).Warn("retrying pipeline stage", "stage", stage, "error", err)
	}, fn)
}
