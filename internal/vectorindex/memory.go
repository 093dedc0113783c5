package vectorindex

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// in-process Index for tests and local runs without pgvector
type MemoryIndex struct {
	mu         sync.RWMutex
	namespaces map[string][]Item
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{namespaces: make(map[string][]Item)}
}

func (m *MemoryIndex) Upsert(_ context.Context, namespace string, items []Item) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	for _, item := range items {
		if err := ValidateMetadata(item.Metadata); err != nil {
			return fmt.Errorf("vector %s: %w", item.ID, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.namespaces[namespace]

	for _, item := range items {
		item.Vector = slices.Clone(item.Vector)

		idx := slices.IndexFunc(stored, func(existing Item) bool { return existing.ID == item.ID })
		if idx >= 0 {
			stored[idx] = item
			continue
		}

		stored = append(stored, item)
	}

	m.namespaces[namespace] = stored

	return nil
}

func (m *MemoryIndex) Query(_ context.Context, namespace string, q Query) ([]Match, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}

	if err := validateFilter(q.Filter); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := []Match{}

	for _, item := range m.namespaces[namespace] {
		if !containsAll(item.Metadata, q.Filter) {
			continue
		}

		match := Match{ID: item.ID, Score: cosine(q.Vector, item.Vector)}
		if q.IncludeMetadata {
			match.Metadata = item.Metadata
		}

		matches = append(matches, match)
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}

		return 0
	})

	if len(matches) > q.TopK {
		matches = matches[:max(q.TopK, 0)]
	}

	return matches, nil
}

func containsAll(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}

	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
