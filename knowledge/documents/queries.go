package documents

const (
	chunkColumns = `
		c.id, c.document_id, c.project_id, c.owner_id, c.position, c.text, c.importance, c.tags,
		c.vector_id, c.indexed_at, c.embedding_model, c.embedding_dim, d.title, d.source_kind
	`

	queryCreate = `
		INSERT INTO documents (
			project_id, owner_id, title, source_kind, importance, tags, extracted_text, original_filename, file_size
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	queryInsertChunk = `
		INSERT INTO kb_chunks (document_id, project_id, owner_id, position, text, importance, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	queryList = `
		SELECT d.id, d.project_id, d.owner_id, d.title, d.source_kind, d.importance, d.tags,
			d.original_filename, d.file_size, d.created_at,
			(SELECT COUNT(*) FROM kb_chunks c WHERE c.document_id = d.id) AS chunk_count
		FROM documents d
		WHERE d.project_id = $1 AND d.owner_id = $2
		ORDER BY d.created_at DESC
	`

	queryGet = `
		SELECT d.id, d.project_id, d.owner_id, d.title, d.source_kind, d.importance, d.tags,
			d.original_filename, d.file_size, d.created_at,
			(SELECT COUNT(*) FROM kb_chunks c WHERE c.document_id = d.id) AS chunk_count,
			d.extracted_text
		FROM documents d
		WHERE d.id = $1 AND d.owner_id = $2
	`

	queryListChunks = `
		SELECT ` + chunkColumns + `
		FROM kb_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.document_id = $1 AND c.owner_id = $2
		ORDER BY c.position
		LIMIT $3
	`

	queryGetChunk = `
		SELECT ` + chunkColumns + `
		FROM kb_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id = $1 AND c.project_id = $2 AND c.owner_id = $3
	`

	queryGetChunkByVectorID = `
		SELECT ` + chunkColumns + `
		FROM kb_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.vector_id = $1 AND c.project_id = $2 AND c.owner_id = $3
		LIMIT 1
	`

	// mirrors Chunk.IsIndexed: anything not fully indexed under the current model/dim qualifies
	queryListIndexable = `
		SELECT ` + chunkColumns + `
		FROM kb_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.project_id = $1 AND c.owner_id = $2
		  AND (
			$3::boolean
			OR c.vector_id IS NULL
			OR btrim(c.vector_id) = ''
			OR c.indexed_at IS NULL
			OR c.embedding_model IS NULL
			OR c.embedding_dim IS NULL
			OR c.embedding_model <> $4
			OR c.embedding_dim <> $5
		  )
		ORDER BY c.document_id, c.position
		LIMIT $6
	`

	queryMarkIndexed = `
		UPDATE kb_chunks
		SET vector_id = $1,
			indexed_at = NOW(),
			embedding_model = $2,
			embedding_dim = $3
		WHERE id = $4 AND owner_id = $5
	`

	queryIndexStats = `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (
				WHERE vector_id IS NOT NULL AND btrim(vector_id) <> ''
				  AND indexed_at IS NOT NULL
				  AND embedding_model = $3 AND embedding_dim = $4
			) AS indexed
		FROM kb_chunks
		WHERE project_id = $1 AND owner_id = $2
	`
)
