package documents

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/kbase/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrChunkNotFound    = errors.New("chunk not found")
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// inserts the document and all of its chunks in one transaction.
// chunks copy the document's importance and tags as they are now.
func (r *Repository) Create(ctx context.Context, doc NewDocument) (*Document, error) {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, tx)

	created := Document{
		ProjectID:        doc.ProjectID,
		OwnerID:          doc.OwnerID,
		Title:            doc.Title,
		SourceKind:       doc.SourceKind,
		Importance:       doc.Importance,
		Tags:             tags,
		ExtractedText:    doc.ExtractedText,
		OriginalFilename: doc.OriginalFilename,
		FileSize:         doc.FileSize,
		ChunkCount:       len(doc.Chunks),
	}

	err = tx.QueryRow(ctx, queryCreate,
		doc.ProjectID,
		doc.OwnerID,
		doc.Title,
		doc.SourceKind,
		doc.Importance,
		tags,
		doc.ExtractedText,
		doc.OriginalFilename,
		doc.FileSize,
	).Scan(&created.ID, &created.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	if len(doc.Chunks) > 0 {
		batch := &pgx.Batch{}

		for position, text := range doc.Chunks {
			batch.Queue(queryInsertChunk,
				created.ID,
				doc.ProjectID,
				doc.OwnerID,
				position,
				text,
				doc.Importance,
				tags,
			)
		}

		br := tx.SendBatch(ctx, batch)

		for i := range doc.Chunks {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				return nil, fmt.Errorf("failed to insert chunk %d: %w", i, err)
			}
		}

		// must close batch results before committing, otherwise connection is still "busy"
		if err := br.Close(); err != nil {
			return nil, fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &created, nil
}

func (r *Repository) List(ctx context.Context, projectID, ownerID string) ([]Document, error) {
	rows, err := r.db.Query(ctx, queryList, projectID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	defer rows.Close()

	docs := []Document{}

	for rows.Next() {
		var d Document

		err := rows.Scan(
			&d.ID,
			&d.ProjectID,
			&d.OwnerID,
			&d.Title,
			&d.SourceKind,
			&d.Importance,
			&d.Tags,
			&d.OriginalFilename,
			&d.FileSize,
			&d.CreatedAt,
			&d.ChunkCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

func (r *Repository) Get(ctx context.Context, documentID, ownerID string) (*Document, error) {
	var d Document

	err := r.db.QueryRow(ctx, queryGet, documentID, ownerID).Scan(
		&d.ID,
		&d.ProjectID,
		&d.OwnerID,
		&d.Title,
		&d.SourceKind,
		&d.Importance,
		&d.Tags,
		&d.OriginalFilename,
		&d.FileSize,
		&d.CreatedAt,
		&d.ChunkCount,
		&d.ExtractedText,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &d, nil
}

// chunks of one owned document in position order
func (r *Repository) ListChunks(ctx context.Context, documentID, ownerID string, limit int) ([]Chunk, error) {
	rows, err := r.db.Query(ctx, queryListChunks, documentID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	return scanChunks(rows)
}

// looks a chunk up by primary id within (project, owner)
func (r *Repository) GetChunk(ctx context.Context, chunkID, projectID, ownerID string) (*Chunk, error) {
	return r.getChunk(ctx, queryGetChunk, chunkID, projectID, ownerID)
}

// looks a chunk up by its vector-store id within (project, owner)
func (r *Repository) GetChunkByVectorID(ctx context.Context, vectorID, projectID, ownerID string) (*Chunk, error) {
	return r.getChunk(ctx, queryGetChunkByVectorID, vectorID, projectID, ownerID)
}

func (r *Repository) getChunk(ctx context.Context, query string, key, projectID, ownerID string) (*Chunk, error) {
	c, err := scanChunk(r.db.QueryRow(ctx, query, key, projectID, ownerID))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChunkNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}

	return c, nil
}

// chunks that are not indexed under the filter's model and dimension
// (all chunks when Force is set), ordered by document then position
func (r *Repository) ListIndexable(ctx context.Context, f IndexableFilter) ([]Chunk, error) {
	rows, err := r.db.Query(ctx, queryListIndexable,
		f.ProjectID,
		f.OwnerID,
		f.Force,
		f.Model,
		f.Dimension,
		f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexable chunks: %w", err)
	}

	return scanChunks(rows)
}

// records the indexing state of a batch; all rows update or none do
func (r *Repository) MarkIndexed(ctx context.Context, ownerID, model string, dim int, chunks []IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, tx)

	batch := &pgx.Batch{}

	for _, c := range chunks {
		batch.Queue(queryMarkIndexed, c.VectorID, model, dim, c.ChunkID, ownerID)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("failed to mark chunk %d indexed: %w", i, err)
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *Repository) IndexStats(ctx context.Context, projectID, ownerID, model string, dim int) (IndexStats, error) {
	var stats IndexStats

	err := r.db.QueryRow(ctx, queryIndexStats, projectID, ownerID, model, dim).Scan(&stats.Total, &stats.Indexed)
	if err != nil {
		return IndexStats{}, fmt.Errorf("failed to get index stats: %w", err)
	}

	return stats, nil
}

func scanChunks(rows pgx.Rows) ([]Chunk, error) {
	defer rows.Close()

	chunks := []Chunk{}

	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}

		chunks = append(chunks, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return chunks, nil
}

func scanChunk(row pgx.Row) (*Chunk, error) {
	var c Chunk

	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.ProjectID,
		&c.OwnerID,
		&c.Position,
		&c.Text,
		&c.Importance,
		&c.Tags,
		&c.VectorID,
		&c.IndexedAt,
		&c.EmbeddingModel,
		&c.EmbeddingDim,
		&c.DocumentTitle,
		&c.SourceKind,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Warn("failed to rollback transaction", "error", err)
	}
}
