package retriever

import (
	"context"
	"time"

	"codeberg.org/kbase/server/internal/reranker"
)

const (
	DefaultRerankMaxDocs = 20
	DefaultRerankTopN    = 8
)

// best-effort reorder of the first maxDocs candidates by a cross-encoder.
// on success only the candidates the reranker returned survive, in its order.
// any failure, an empty answer, or an answer naming none of the candidates
// leaves the input order as it was.
func ApplyRerank(ctx context.Context, rr Reranker, query string, candidates []Candidate, maxDocs, topN int, timeout time.Duration) RerankOutcome {
	skip := func(reason SkipReason, err error) RerankOutcome {
		return RerankOutcome{Candidates: candidates, Reason: reason, Err: err}
	}

	if rr == nil {
		return skip(SkipNotConfigured, nil)
	}

	if len(candidates) == 0 {
		return skip(SkipNoCandidates, nil)
	}

	pool := candidates
	if maxDocs > 0 && len(pool) > maxDocs {
		pool = pool[:maxDocs]
	}

	docs := make([]reranker.Document, 0, len(pool))
	byID := make(map[string]Candidate, len(pool))

	for _, c := range pool {
		text := c.Match.ID
		if c.Chunk != nil {
			text = c.Chunk.Text
		}

		docs = append(docs, reranker.Document{ID: c.Match.ID, Text: text})
		byID[c.Match.ID] = c
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc

		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	results, err := rr.Rerank(callCtx, query, docs, topN)
	if err != nil {
		return skip(SkipFailed, err)
	}

	if len(results) == 0 {
		return skip(SkipEmptyResult, nil)
	}

	reordered := make([]Candidate, 0, len(results))
	seen := make(map[string]bool, len(results))

	for _, r := range results {
		c, ok := byID[r.ID]
		if !ok || seen[r.ID] {
			continue
		}

		seen[r.ID] = true
		reordered = append(reordered, c)
	}

	if len(reordered) == 0 {
		return skip(SkipNoOverlap, nil)
	}

	return RerankOutcome{Candidates: reordered, Applied: true}
}
