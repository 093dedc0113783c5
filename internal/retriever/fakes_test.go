package retriever

import (
	"context"
	"fmt"

	"codeberg.org/kbase/server/internal/reranker"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/documents"
)

// implements ChunkLookup over a fixed set of chunks, honoring scope
type mockChunks struct {
	chunks []documents.Chunk
	err    error
}

func (m *mockChunks) GetChunk(_ context.Context, chunkID, projectID, ownerID string) (*documents.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}

	for _, c := range m.chunks {
		if c.ID == chunkID && c.ProjectID == projectID && c.OwnerID == ownerID {
			return &c, nil
		}
	}

	return nil, documents.ErrChunkNotFound
}

func (m *mockChunks) GetChunkByVectorID(_ context.Context, vectorID, projectID, ownerID string) (*documents.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}

	for _, c := range m.chunks {
		if c.VectorID != nil && *c.VectorID == vectorID && c.ProjectID == projectID && c.OwnerID == ownerID {
			return &c, nil
		}
	}

	return nil, documents.ErrChunkNotFound
}

// implements Reranker for testing
type mockReranker struct {
	rerankFunc func(ctx context.Context, query string, docs []reranker.Document, topN int) ([]reranker.Result, error)
	calls      int
	lastDocs   []reranker.Document
}

func (m *mockReranker) Rerank(ctx context.Context, query string, docs []reranker.Document, topN int) ([]reranker.Result, error) {
	m.calls++
	m.lastDocs = docs

	if m.rerankFunc != nil {
		return m.rerankFunc(ctx, query, docs, topN)
	}

	// reverse order by default
	results := make([]reranker.Result, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		results = append(results, reranker.Result{ID: docs[i].ID, Score: float64(i)})
	}

	return results, nil
}

// implements llm.Embedder for testing
type mockEmbedder struct {
	embedFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++

	if m.embedFunc != nil {
		return m.embedFunc(ctx, texts)
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}

	return out, nil
}

func (m *mockEmbedder) Dimension() int { return 3 }

func (m *mockEmbedder) Model() string { return "mock-embedder" }

// implements vectorindex.Index for testing
type mockIndex struct {
	queryFunc     func(ctx context.Context, namespace string, q vectorindex.Query) ([]vectorindex.Match, error)
	calls         int
	lastNamespace string
	lastQuery     vectorindex.Query
}

func (m *mockIndex) Upsert(context.Context, string, []vectorindex.Item) error {
	return fmt.Errorf("not supported")
}

func (m *mockIndex) Query(ctx context.Context, namespace string, q vectorindex.Query) ([]vectorindex.Match, error) {
	m.calls++
	m.lastNamespace = namespace
	m.lastQuery = q

	if m.queryFunc != nil {
		return m.queryFunc(ctx, namespace, q)
	}

	return []vectorindex.Match{}, nil
}

func strPtr(s string) *string {
	return &s
}
