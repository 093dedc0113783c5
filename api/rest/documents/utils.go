package documents

import (
	"bytes"
	"encoding/json"

	"codeberg.org/kbase/server/internal/ingest"
)

func parseImportance(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ingest.DefaultImportance
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return ingest.ClampImportance(int(n))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ingest.ParseImportance(s)
	}

	return ingest.DefaultImportance
}

func parseTags(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return ingest.NormalizeTags(list), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}

	return ingest.ParseTags(s), nil
}

// first n characters, rune based
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
