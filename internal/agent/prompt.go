package agent

import (
	"fmt"
	"strings"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/retriever"
)

const systemRules = `You are an assistant that answers questions from the user's own knowledge base.
Follow these rules without exception.
1) Use the provided evidence (context) before anything else.
2) Treat evidence with importance=5 as the authoritative answer and follow it as closely as possible.
3) If the evidence conflicts or is not enough, do not guess; say "insufficient/conflicting evidence".
4) Do not infer anything that is not in the evidence; ask for the additional information you need.`

const contextPreamble = "The following is evidence from the knowledge base the user uploaded.\n\n"

const noEvidenceNotice = "The knowledge base returned no evidence for this question. " +
	"Do not state anything as fact; ask the user for the additional information you need."

// renders one block per candidate: title, position, importance, then text
func buildContext(candidates []retriever.Candidate, limit int) string {
	blocks := make([]string, 0, min(len(candidates), limit))

	for _, c := range candidates {
		if len(blocks) >= limit {
			break
		}

		if c.Chunk == nil {
			continue
		}

		blocks = append(blocks, fmt.Sprintf("[Document: %s | chunk #%d | importance=%d]\n%s\n",
			c.Chunk.DocumentTitle, c.Chunk.Position, c.Chunk.Importance, c.Chunk.Text))
	}

	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

// rules, then evidence (or the explicit no-evidence notice), then the question
func buildMessages(contextText, question string) []llm.Message {
	evidence := noEvidenceNotice
	if contextText != "" {
		evidence = contextPreamble + contextText
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemRules},
		{Role: llm.RoleSystem, Content: evidence},
		{Role: llm.RoleUser, Content: question},
	}
}
