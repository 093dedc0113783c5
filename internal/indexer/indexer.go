package indexer

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/logger"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/retry"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/documents"
)

const (
	defaultCallTimeout = 30 * time.Second
	defaultLockTTL     = 15 * time.Minute
)

func New(
	projects ProjectStore,
	chunks ChunkStore,
	embedder llm.Embedder,
	index vectorindex.Index,
	locker locks.Locker,
	m *metrics.Metrics,
	config Config,
) *Indexer {
	if config.CallTimeout <= 0 {
		config.CallTimeout = defaultCallTimeout
	}

	if config.LockTTL <= 0 {
		config.LockTTL = defaultLockTTL
	}

	return &Indexer{
		projects: projects,
		chunks:   chunks,
		embedder: embedder,
		index:    index,
		locker:   locker,
		metrics:  m,
		config:   config,
	}
}

// indexes up to Limit chunks of the project that are not indexed under the
// current embedding model and dimension (or all of them with Force).
// only one run per project may be active; a second gets locks.ErrLocked.
// a chunk is marked indexed only after its vector was upserted.
func (ix *Indexer) Index(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	result := &Result{
		Limit:     ClampLimit(req.Limit),
		BatchSize: ClampBatchSize(req.BatchSize),
		Force:     req.Force,
	}

	if _, err := ix.projects.Get(ctx, req.ProjectID, req.OwnerID); err != nil {
		return nil, err
	}

	lease, err := ix.locker.Acquire(ctx, lockKey(req.ProjectID), ix.config.LockTTL)
	if err != nil {
		return nil, err
	}

	defer func() {
		// released on a fresh context so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := lease.Release(releaseCtx); err != nil {
			logger.FromContext(ctx).Warn("failed to release index lock", "project_id", req.ProjectID, "error", err)
		}
	}()

	model := ix.embedder.Model()
	dim := ix.embedder.Dimension()

	pending, err := ix.chunks.ListIndexable(ctx, documents.IndexableFilter{
		ProjectID: req.ProjectID,
		OwnerID:   req.OwnerID,
		Model:     model,
		Dimension: dim,
		Force:     req.Force,
		Limit:     result.Limit,
	})
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(pending); start += result.BatchSize {
		end := min(start+result.BatchSize, len(pending))

		if err := ix.indexBatch(ctx, req.OwnerID, model, dim, pending[start:end]); err != nil {
			return nil, fmt.Errorf("batch starting at %d: %w", start, err)
		}

		result.IndexedCount += end - start
		ix.metrics.Indexed(end - start)

		if progress != nil {
			progress(result.IndexedCount, len(pending))
		}
	}

	logger.FromContext(ctx).Info("indexed project chunks",
		"project_id", req.ProjectID,
		"indexed_count", result.IndexedCount,
		"force", req.Force,
	)

	return result, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, ownerID, model string, dim int, batch []documents.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	started := time.Now()

	var vectors [][]float32

	err := ix.withRetry(ctx, "index_embed", func(ctx context.Context) error {
		var err error

		vectors, err = ix.embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}

		if len(vectors) != len(batch) {
			return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	ix.metrics.ObserveStage("index_embed", started)

	items := make([]vectorindex.Item, len(batch))
	marks := make([]documents.IndexedChunk, len(batch))

	for i, c := range batch {
		id := vectorIDFor(c)

		items[i] = vectorindex.Item{ID: id, Vector: vectors[i], Metadata: metadataFor(c)}
		marks[i] = documents.IndexedChunk{ChunkID: c.ID, VectorID: id}
	}

	err = ix.withRetry(ctx, "index_upsert", func(ctx context.Context) error {
		return ix.index.Upsert(ctx, ownerID, items)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	if err := ix.chunks.MarkIndexed(ctx, ownerID, model, dim, marks); err != nil {
		return fmt.Errorf("failed to mark chunks indexed: %w", err)
	}

	return nil
}

// upserts are idempotent per vector id, so both stages may be attempted twice
func (ix *Indexer) withRetry(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, ix.config.CallTimeout, func(err error) {
		ix.metrics.Retry(stage)
		logger.FromContext(ctx).Warn("retrying index stage", "stage", stage, "error", err)
	}, fn)
}
