package indexer

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/kbase/server/knowledge/documents"
)

const (
	DefaultLimit     = 300
	MaxLimit         = 2000
	DefaultBatchSize = 64
	MaxBatchSize     = 256
)

func ClampLimit(n int) int {
	return min(max(n, 1), MaxLimit)
}

func ClampBatchSize(n int) int {
	return min(max(n, 1), MaxBatchSize)
}

// parses a limit query value; unparsable input falls back to the default
func ParseLimit(raw string) int {
	return ClampLimit(parseIntOr(raw, DefaultLimit))
}

// parses a batch query value; unparsable input falls back to the default
func ParseBatchSize(raw string) int {
	return ClampBatchSize(parseIntOr(raw, DefaultBatchSize))
}

func parseIntOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}

	return n
}

// deterministic external id, unique across users, projects and documents
func DefaultVectorID(ownerID, projectID, documentID string, position int) string {
	return fmt.Sprintf("u%s-p%s-d%s-c%d", ownerID, projectID, documentID, position)
}

// keeps a chunk's existing external id so re-indexing overwrites in place
func vectorIDFor(c documents.Chunk) string {
	if id, ok := c.ExistingVectorID(); ok {
		return id
	}

	return DefaultVectorID(c.OwnerID, c.ProjectID, c.DocumentID, c.Position)
}

// flat metadata stored beside each vector
func metadataFor(c documents.Chunk) map[string]any {
	md := map[string]any{
		"user_id":     c.OwnerID,
		"project_id":  c.ProjectID,
		"document_id": c.DocumentID,
		"chunk_index": c.Position,
		"kb_chunk_id": c.ID,
		"importance":  c.Importance,
	}

	if c.DocumentTitle != "" {
		md["doc_title"] = c.DocumentTitle
	}

	if c.SourceKind != "" {
		md["source_type"] = string(c.SourceKind)
	}

	if len(c.Tags) > 0 {
		md["tags"] = c.Tags
	}

	return md
}

func lockKey(projectID string) string {
	return "index:project:" + projectID
}
