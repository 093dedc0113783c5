package agent

import (
	"strings"
	"testing"

	"codeberg.org/kbase/server/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContextFormat(t *testing.T) {
	got := buildContext(candidates(2), 8)

	want := "[Document: Handbook | chunk #0 | importance=3]\nfact number 0\n\n\n" +
		"[Document: Handbook | chunk #1 | importance=3]\nfact number 1"

	assert.Equal(t, want, got)
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Empty(t, buildContext(nil, 8))
}

func TestBuildMessagesAlwaysCarriesEvidenceInstruction(t *testing.T) {
	msgs := buildMessages("", "q")

	require.Len(t, msgs, 3)
	assert.Equal(t, noEvidenceNotice, msgs[1].Content)

	msgs = buildMessages("[Document: x | chunk #0 | importance=5]\ny", "q")
	assert.True(t, strings.HasPrefix(msgs[1].Content, contextPreamble))
	assert.Equal(t, llm.RoleUser, msgs[2].Role)
}

func TestSystemRulesMentionPolicy(t *testing.T) {
	assert.Contains(t, systemRules, "importance=5")
	assert.Contains(t, systemRules, "insufficient/conflicting evidence")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	exact := strings.Repeat("a", previewChars)
	assert.Equal(t, exact, preview(exact))

	long := strings.Repeat("가", previewChars+1)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, previewChars+3, len([]rune(got)))
}
