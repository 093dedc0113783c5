package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"codeberg.org/kbase/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const (
	defaultEfSearch = 40
	maxEfSearch     = 1000
)

// pgvector-backed Index over the vector_items table
type PGIndex struct {
	pool *pgxpool.Pool
	dim  int
}

// fails fast when the backend is not configured
func NewPGIndex(pool *pgxpool.Pool, dim int) (*PGIndex, error) {
	if pool == nil {
		return nil, fmt.Errorf("vector index requires a database pool")
	}

	if dim < 1 {
		return nil, fmt.Errorf("vector index dimension must be positive, got %d", dim)
	}

	return &PGIndex{pool: pool, dim: dim}, nil
}

// writes all items in one transaction; either every item lands or none does
func (x *PGIndex) Upsert(ctx context.Context, namespace string, items []Item) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("vector item id is required")
		}

		if len(item.Vector) != x.dim {
			return fmt.Errorf("vector %s has dimension %d, index expects %d", item.ID, len(item.Vector), x.dim)
		}

		if err := ValidateMetadata(item.Metadata); err != nil {
			return fmt.Errorf("vector %s: %w", item.ID, err)
		}
	}

	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	batch := &pgx.Batch{}

	for _, item := range items {
		metadata := item.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		batch.Queue(upsertItemQuery, namespace, item.ID, pgvector.NewVector(item.Vector), metadata)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range items {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("failed to upsert vector %d: %w", i, err)
		}
	}

	// must close batch results before committing, otherwise connection is still "busy"
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// returns up to TopK matches in the namespace, most similar first
func (x *PGIndex) Query(ctx context.Context, namespace string, q Query) ([]Match, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}

	if len(q.Vector) != x.dim {
		return nil, fmt.Errorf("query vector has dimension %d, index expects %d", len(q.Vector), x.dim)
	}

	if q.TopK < 1 {
		return []Match{}, nil
	}

	filter := q.Filter
	if filter == nil {
		filter = map[string]any{}
	}

	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	// set_config(..., true) only lasts for the transaction
	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, iterativeScanQuery); err != nil {
		return nil, fmt.Errorf("failed to enable iterative scan: %w", err)
	}

	if _, err := tx.Exec(ctx, efSearchQuery, strconv.Itoa(EfSearchFor(q.TopK))); err != nil {
		return nil, fmt.Errorf("failed to set ef_search: %w", err)
	}

	rows, err := tx.Query(ctx, queryItemsQuery, namespace, pgvector.NewVector(q.Vector), filter, q.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector query: %w", err)
	}
	defer rows.Close()

	matches := []Match{}

	for rows.Next() {
		var (
			match    Match
			metadata map[string]any
		)

		if err := rows.Scan(&match.ID, &match.Score, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if q.IncludeMetadata {
			match.Metadata = metadata
		}

		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return matches, nil
}

// candidate list size for one query: pgvector's default of 40, raised to
// top_k so a single scan round can already fill the result
func EfSearchFor(topK int) int {
	return min(max(topK, defaultEfSearch), maxEfSearch)
}
