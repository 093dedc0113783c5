package retriever

import (
	"context"
	"fmt"
	"testing"

	"codeberg.org/kbase/server/internal/reranker"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedCandidates(n int) []Candidate {
	out := make([]Candidate, n)

	for i := range n {
		id := fmt.Sprintf("v%d", i)
		out[i] = Candidate{
			Match: vectorindex.Match{ID: id, Score: 1 - float64(i)/100},
			Chunk: &documents.Chunk{ID: fmt.Sprintf("c%d", i), Text: "text " + id},
		}
	}

	return out
}

func ids(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Match.ID
	}

	return out
}

func TestApplyRerankFailureKeepsOrder(t *testing.T) {
	input := rankedCandidates(5)
	before := ids(input)

	rr := &mockReranker{
		rerankFunc: func(context.Context, string, []reranker.Document, int) ([]reranker.Result, error) {
			return nil, fmt.Errorf("upstream 503")
		},
	}

	outcome := ApplyRerank(context.Background(), rr, "q", input, DefaultRerankMaxDocs, DefaultRerankTopN, 0)

	assert.False(t, outcome.Applied)
	assert.Equal(t, SkipFailed, outcome.Reason)
	require.Error(t, outcome.Err)
	assert.Equal(t, before, ids(outcome.Candidates))
}

func TestApplyRerankEmptyResultKeepsOrder(t *testing.T) {
	input := rankedCandidates(3)

	rr := &mockReranker{
		rerankFunc: func(context.Context, string, []reranker.Document, int) ([]reranker.Result, error) {
			return []reranker.Result{}, nil
		},
	}

	outcome := ApplyRerank(context.Background(), rr, "q", input, DefaultRerankMaxDocs, DefaultRerankTopN, 0)

	assert.False(t, outcome.Applied)
	assert.Equal(t, SkipEmptyResult, outcome.Reason)
	assert.Equal(t, ids(input), ids(outcome.Candidates))
}

func TestApplyRerankNoOverlapKeepsOrder(t *testing.T) {
	input := rankedCandidates(3)

	rr := &mockReranker{
		rerankFunc: func(context.Context, string, []reranker.Document, int) ([]reranker.Result, error) {
			return []reranker.Result{{ID: "renamed-1"}, {ID: "renamed-2"}}, nil
		},
	}

	outcome := ApplyRerank(context.Background(), rr, "q", input, DefaultRerankMaxDocs, DefaultRerankTopN, 0)

	assert.False(t, outcome.Applied)
	assert.Equal(t, SkipNoOverlap, outcome.Reason)
	assert.Equal(t, ids(input), ids(outcome.Candidates))
}

func TestApplyRerankReordersAndDropsUnreturned(t *testing.T) {
	input := rankedCandidates(4)

	rr := &mockReranker{
		rerankFunc: func(context.Context, string, []reranker.Document, int) ([]reranker.Result, error) {
			return []reranker.Result{{ID: "v2"}, {ID: "unknown"}, {ID: "v0"}, {ID: "v2"}}, nil
		},
	}

	outcome := ApplyRerank(context.Background(), rr, "q", input, DefaultRerankMaxDocs, DefaultRerankTopN, 0)

	assert.True(t, outcome.Applied)
	assert.Empty(t, outcome.Reason)
	assert.Equal(t, []string{"v2", "v0"}, ids(outcome.Candidates))
}

func TestApplyRerankCapsDocuments(t *testing.T) {
	rr := &mockReranker{}

	outcome := ApplyRerank(context.Background(), rr, "q", rankedCandidates(30), 20, 8, 0)

	require.True(t, outcome.Applied)
	assert.Len(t, rr.lastDocs, 20)
	assert.Equal(t, "text v0", rr.lastDocs[0].Text)
	assert.Equal(t, "v19", outcome.Candidates[0].Match.ID)
}

func TestApplyRerankNotConfigured(t *testing.T) {
	input := rankedCandidates(2)

	outcome := ApplyRerank(context.Background(), nil, "q", input, 20, 8, 0)

	assert.False(t, outcome.Applied)
	assert.Equal(t, SkipNotConfigured, outcome.Reason)
	assert.Equal(t, ids(input), ids(outcome.Candidates))
}

func TestApplyRerankNoCandidatesSkipsCall(t *testing.T) {
	rr := &mockReranker{}

	outcome := ApplyRerank(context.Background(), rr, "q", nil, 20, 8, 0)

	assert.Equal(t, SkipNoCandidates, outcome.Reason)
	assert.Equal(t, 0, rr.calls)
}
