package vectorindex

import "context"

// one vector to store under a namespace
type Item struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// one nearest-neighbor hit. metadata is advisory: callers re-check it
// against the authoritative store before trusting it.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type Query struct {
	Vector          []float32
	Filter          map[string]any // exact-match predicate on metadata keys
	TopK            int
	IncludeMetadata bool
}

// namespaced, filterable vector store
type Index interface {
	Upsert(ctx context.Context, namespace string, items []Item) error
	Query(ctx context.Context, namespace string, q Query) ([]Match, error)
}
