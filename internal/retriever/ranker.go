package retriever

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"codeberg.org/kbase/server/internal/vectorindex"
)

const (
	DefaultImportanceWeight = 0.15
	DefaultImportance       = 3.0
	minImportance           = 1.0
	maxImportance           = 5.0
)

// maps importance onto [0,1], clamping to [1,5] first
func NormalizeImportance(importance float64) float64 {
	clamped := min(max(importance, minImportance), maxImportance)

	return (clamped - minImportance) / (maxImportance - minImportance)
}

// raw similarity nudged by at most weight for the most important documents
func CombinedScore(raw, importance, weight float64) float64 {
	return raw + weight*NormalizeImportance(importance)
}

// scores matches and sorts them by combined score, highest first.
// equal scores keep their incoming order.
func Rank(matches []vectorindex.Match, weight float64) []Candidate {
	candidates := make([]Candidate, len(matches))

	for i, m := range matches {
		imp := importanceOf(m.Metadata)

		candidates[i] = Candidate{
			Match:      m,
			Importance: imp,
			Combined:   CombinedScore(m.Score, imp, weight),
		}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Combined, a.Combined)
	})

	return candidates
}

// reads the importance metadata field, defaulting to 3 when absent or unreadable
func importanceOf(metadata map[string]any) float64 {
	raw, ok := metadata["importance"]
	if !ok || raw == nil {
		return DefaultImportance
	}

	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}

	return DefaultImportance
}
