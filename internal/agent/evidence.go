package agent

import (
	"unicode/utf8"

	"codeberg.org/kbase/server/internal/retriever"
)

const previewChars = 300

// the first limit candidates as evidence records
func buildEvidence(candidates []retriever.Candidate, limit int) []Evidence {
	evidence := make([]Evidence, 0, min(len(candidates), limit))

	for _, c := range candidates {
		if len(evidence) >= limit {
			break
		}

		if c.Chunk == nil {
			continue
		}

		tags := c.Chunk.Tags
		if tags == nil {
			tags = []string{}
		}

		evidence = append(evidence, Evidence{
			ChunkID:       c.Chunk.ID,
			VectorID:      c.Match.ID,
			DocumentID:    c.Chunk.DocumentID,
			DocumentTitle: c.Chunk.DocumentTitle,
			ChunkIndex:    c.Chunk.Position,
			Importance:    c.Chunk.Importance,
			Tags:          tags,
			Score:         c.Combined,
			TextPreview:   preview(c.Chunk.Text),
		})
	}

	return evidence
}

// first 300 characters, with "..." appended only when text was cut
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewChars {
		return text
	}

	return string([]rune(text)[:previewChars]) + "..."
}

func evidenceChunkIDs(evidence []Evidence) []string {
	ids := make([]string, len(evidence))
	for i, e := range evidence {
		ids[i] = e.ChunkID
	}

	return ids
}
