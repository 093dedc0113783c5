package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/kbase/server/knowledge/documents"
	"github.com/google/uuid"
)

// replaces each candidate's advisory metadata with the authoritative chunk.
// a chunk id carried in metadata is looked up by primary key; otherwise the
// vector id is used. misses are dropped, never substituted. returns the
// surviving candidates in their incoming order and the number dropped.
func Resolve(ctx context.Context, lookup ChunkLookup, scope Scope, ranked []Candidate) ([]Candidate, int, error) {
	resolved := make([]Candidate, 0, len(ranked))
	dropped := 0

	for _, cand := range ranked {
		chunk, err := resolveOne(ctx, lookup, scope, cand)
		if err != nil {
			return nil, 0, err
		}

		if chunk == nil || chunk.ProjectID != scope.ProjectID || chunk.OwnerID != scope.OwnerID {
			dropped++
			continue
		}

		cand.Chunk = chunk
		resolved = append(resolved, cand)
	}

	return resolved, dropped, nil
}

// nil chunk with nil error means "discard"
func resolveOne(ctx context.Context, lookup ChunkLookup, scope Scope, cand Candidate) (*documents.Chunk, error) {
	var (
		chunk *documents.Chunk
		err   error
	)

	if chunkID, ok := metadataString(cand.Match.Metadata, "kb_chunk_id"); ok {
		if !isUUID(chunkID) {
			return nil, nil
		}

		chunk, err = lookup.GetChunk(ctx, chunkID, scope.ProjectID, scope.OwnerID)
	} else {
		if strings.TrimSpace(cand.Match.ID) == "" {
			return nil, nil
		}

		chunk, err = lookup.GetChunkByVectorID(ctx, cand.Match.ID, scope.ProjectID, scope.OwnerID)
	}

	if errors.Is(err, documents.ErrChunkNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to resolve match %s: %w", cand.Match.ID, err)
	}

	return chunk, nil
}

func metadataString(metadata map[string]any, key string) (string, bool) {
	raw, ok := metadata[key]
	if !ok || raw == nil {
		return "", false
	}

	s := strings.TrimSpace(fmt.Sprint(raw))

	return s, s != ""
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
