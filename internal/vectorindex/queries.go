package vectorindex

const (
	upsertItemQuery = `
		INSERT INTO vector_items (namespace, id, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (namespace, id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
	`

	// the hnsw index post-filters its candidate list, so the namespace and
	// metadata filters need an iterative scan (pgvector 0.8+) to fill top_k
	iterativeScanQuery = `SELECT set_config('hnsw.iterative_scan', 'strict_order', true)`
	efSearchQuery      = `SELECT set_config('hnsw.ef_search', $1, true)`

	// cosine similarity; ordering by distance keeps the hnsw index usable
	queryItemsQuery = `
		SELECT id, 1 - (embedding <=> $2) AS score, metadata
		FROM vector_items
		WHERE namespace = $1 AND metadata @> $3
		ORDER BY embedding <=> $2
		LIMIT $4
	`
)
