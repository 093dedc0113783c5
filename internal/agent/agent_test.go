package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/reranker"
	"codeberg.org/kbase/server/internal/retriever"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner   = "owner-1"
	testProject = "project-1"
	testConv    = "conv-1"
)

// implements ConversationStore in memory
type mockConversations struct {
	messages []conversations.Message
	addErr   error
}

func (m *mockConversations) Get(_ context.Context, conversationID, ownerID string) (*conversations.Conversation, error) {
	if conversationID != testConv || ownerID != testOwner {
		return nil, conversations.ErrConversationNotFound
	}

	return &conversations.Conversation{ID: testConv, ProjectID: testProject, OwnerID: testOwner}, nil
}

func (m *mockConversations) AddMessage(_ context.Context, conversationID, role, content string, meta map[string]any) (*conversations.Message, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}

	msg := conversations.Message{
		ID:             fmt.Sprintf("msg-%d", len(m.messages)+1),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Meta:           meta,
		CreatedAt:      time.Now(),
	}
	m.messages = append(m.messages, msg)

	return &msg, nil
}

// implements Retriever for testing
type mockRetriever struct {
	retrieveFunc func(ctx context.Context, scope retriever.Scope, query string) ([]retriever.Candidate, error)
	lastScope    retriever.Scope
}

func (m *mockRetriever) Retrieve(ctx context.Context, scope retriever.Scope, query string) ([]retriever.Candidate, error) {
	m.lastScope = scope

	if m.retrieveFunc != nil {
		return m.retrieveFunc(ctx, scope, query)
	}

	return []retriever.Candidate{}, nil
}

// implements llm.TextGenerator for testing
type mockGenerator struct {
	completeFunc func(ctx context.Context, messages []llm.Message) (string, error)
	lastMessages []llm.Message
}

func (m *mockGenerator) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	m.lastMessages = messages

	if m.completeFunc != nil {
		return m.completeFunc(ctx, messages)
	}

	return "mock answer", nil
}

func (m *mockGenerator) Model() string {
	return "mock-model"
}

// implements retriever.Reranker for testing
type mockReranker struct {
	rerankFunc func(ctx context.Context, query string, docs []reranker.Document, topN int) ([]reranker.Result, error)
}

func (m *mockReranker) Rerank(ctx context.Context, query string, docs []reranker.Document, topN int) ([]reranker.Result, error) {
	return m.rerankFunc(ctx, query, docs, topN)
}

func candidates(n int) []retriever.Candidate {
	out := make([]retriever.Candidate, n)

	for i := range n {
		out[i] = retriever.Candidate{
			Match:    vectorindex.Match{ID: fmt.Sprintf("vec-%d", i), Score: 0.9 - float64(i)/100},
			Combined: 0.9 - float64(i)/100,
			Chunk: &documents.Chunk{
				ID:            fmt.Sprintf("chunk-%d", i),
				DocumentID:    "doc-1",
				ProjectID:     testProject,
				OwnerID:       testOwner,
				Position:      i,
				Text:          fmt.Sprintf("fact number %d", i),
				Importance:    3,
				DocumentTitle: "Handbook",
			},
		}
	}

	return out
}

func newTestAgent(store *mockConversations, ret *mockRetriever, rr retriever.Reranker, gen *mockGenerator) *Agent {
	return New(store, ret, rr, gen, nil, Config{})
}

func TestSendMessageEmptyMessage(t *testing.T) {
	store := &mockConversations{}
	a := newTestAgent(store, &mockRetriever{}, nil, &mockGenerator{})

	_, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "  \n "})

	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, store.messages)
}

func TestSendMessageForeignConversation(t *testing.T) {
	store := &mockConversations{}
	a := newTestAgent(store, &mockRetriever{}, nil, &mockGenerator{})

	_, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: "intruder", Message: "hi"})

	require.ErrorIs(t, err, conversations.ErrConversationNotFound)
	assert.Empty(t, store.messages)
}

func TestSendMessageEmptyKnowledgeBase(t *testing.T) {
	store := &mockConversations{}
	ret := &mockRetriever{}
	gen := &mockGenerator{}
	a := newTestAgent(store, ret, nil, gen)

	resp, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "anything?"})
	require.NoError(t, err)

	assert.Empty(t, resp.Evidence)
	assert.NotNil(t, resp.Evidence)

	require.Len(t, gen.lastMessages, 3)
	assert.Equal(t, llm.RoleSystem, gen.lastMessages[0].Role)
	assert.Equal(t, llm.RoleSystem, gen.lastMessages[1].Role)
	assert.Contains(t, gen.lastMessages[1].Content, "no evidence")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "anything?"}, gen.lastMessages[2])

	assert.Equal(t, retriever.Scope{ProjectID: testProject, OwnerID: testOwner}, ret.lastScope)
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	store := &mockConversations{}
	ret := &mockRetriever{
		retrieveFunc: func(context.Context, retriever.Scope, string) ([]retriever.Candidate, error) {
			return candidates(2), nil
		},
	}

	a := newTestAgent(store, ret, nil, &mockGenerator{})

	resp, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: " question "})
	require.NoError(t, err)

	require.Len(t, store.messages, 2)
	assert.Equal(t, conversations.RoleUser, store.messages[0].Role)
	assert.Equal(t, "question", store.messages[0].Content)
	assert.Equal(t, conversations.RoleAssistant, store.messages[1].Role)
	assert.Equal(t, "mock answer", store.messages[1].Content)
	assert.Equal(t, []string{"chunk-0", "chunk-1"}, store.messages[1].Meta["evidence_chunk_ids"])

	assert.Equal(t, store.messages[1].ID, resp.MessageID)
	assert.Equal(t, "mock answer", resp.Answer)
	assert.False(t, resp.UseReranker)
}

func TestSendMessageGeneratorFailureKeepsUserTurn(t *testing.T) {
	store := &mockConversations{}
	gen := &mockGenerator{
		completeFunc: func(context.Context, []llm.Message) (string, error) {
			return "", fmt.Errorf("model overloaded")
		},
	}

	a := newTestAgent(store, &mockRetriever{}, nil, gen)

	_, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "hello"})
	require.Error(t, err)

	require.Len(t, store.messages, 1)
	assert.Equal(t, conversations.RoleUser, store.messages[0].Role)
}

func TestSendMessageRetrievalFailureKeepsUserTurn(t *testing.T) {
	store := &mockConversations{}
	ret := &mockRetriever{
		retrieveFunc: func(context.Context, retriever.Scope, string) ([]retriever.Candidate, error) {
			return nil, fmt.Errorf("vector index unavailable")
		},
	}
	gen := &mockGenerator{}

	a := newTestAgent(store, ret, nil, gen)

	_, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "hello"})
	require.Error(t, err)

	assert.Len(t, store.messages, 1)
	assert.Nil(t, gen.lastMessages)
}

func TestSendMessageRerankerFailureKeepsOrder(t *testing.T) {
	store := &mockConversations{}
	ret := &mockRetriever{
		retrieveFunc: func(context.Context, retriever.Scope, string) ([]retriever.Candidate, error) {
			return candidates(6), nil
		},
	}
	rr := &mockReranker{
		rerankFunc: func(context.Context, string, []reranker.Document, int) ([]reranker.Result, error) {
			return nil, fmt.Errorf("reranker exploded")
		},
	}

	a := newTestAgent(store, ret, rr, &mockGenerator{})

	resp, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "q", UseReranker: true})
	require.NoError(t, err)

	require.Len(t, resp.Evidence, 5)
	for i, e := range resp.Evidence {
		assert.Equal(t, fmt.Sprintf("chunk-%d", i), e.ChunkID)
	}

	assert.True(t, resp.UseReranker)
	assert.Equal(t, string(retriever.SkipFailed), resp.RerankSkipped)
	assert.Equal(t, string(retriever.SkipFailed), store.messages[1].Meta["rerank_skipped"])
}

func TestSendMessageRerankReorders(t *testing.T) {
	ret := &mockRetriever{
		retrieveFunc: func(context.Context, retriever.Scope, string) ([]retriever.Candidate, error) {
			return candidates(3), nil
		},
	}
	rr := &mockReranker{
		rerankFunc: func(_ context.Context, _ string, docs []reranker.Document, topN int) ([]reranker.Result, error) {
			assert.Equal(t, retriever.DefaultRerankTopN, topN)
			assert.Equal(t, "fact number 0", docs[0].Text)

			return []reranker.Result{{ID: "vec-2"}, {ID: "vec-0"}}, nil
		},
	}

	a := newTestAgent(&mockConversations{}, ret, rr, &mockGenerator{})

	resp, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "q", UseReranker: true})
	require.NoError(t, err)

	require.Len(t, resp.Evidence, 2)
	assert.Equal(t, "chunk-2", resp.Evidence[0].ChunkID)
	assert.Equal(t, "chunk-0", resp.Evidence[1].ChunkID)
	assert.Empty(t, resp.RerankSkipped)
}

func TestSendMessageRerankNotConfigured(t *testing.T) {
	ret := &mockRetriever{
		retrieveFunc: func(context.Context, retriever.Scope, string) ([]retriever.Candidate, error) {
			return candidates(2), nil
		},
	}

	a := newTestAgent(&mockConversations{}, ret, nil, &mockGenerator{})

	resp, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "q", UseReranker: true})
	require.NoError(t, err)

	assert.Equal(t, string(retriever.SkipNotConfigured), resp.RerankSkipped)
	assert.Len(t, resp.Evidence, 2)
}

func TestSendMessageLimitsContextAndEvidence(t *testing.T) {
	ret := &mockRetriever{
		retrieveFunc: func(context.Context, retriever.Scope, string) ([]retriever.Candidate, error) {
			return candidates(12), nil
		},
	}
	gen := &mockGenerator{}

	a := newTestAgent(&mockConversations{}, ret, nil, gen)

	resp, err := a.SendMessage(context.Background(), SendRequest{ConversationID: testConv, OwnerID: testOwner, Message: "q"})
	require.NoError(t, err)

	assert.Len(t, resp.Evidence, 5)

	contextMsg := gen.lastMessages[1].Content
	assert.Equal(t, 8, strings.Count(contextMsg, "[Document: "))
	assert.Contains(t, contextMsg, "[Document: Handbook | chunk #0 | importance=3]\nfact number 0")
	assert.NotContains(t, contextMsg, "fact number 8")
}
