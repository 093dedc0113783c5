package agent_test

import (
	"context"
	"strings"
	"testing"

	"codeberg.org/kbase/server/internal/agent"
	"codeberg.org/kbase/server/internal/chunker"
	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/ingest"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/retriever"
	"codeberg.org/kbase/server/internal/testutil"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/conversations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadIndexAsk(t *testing.T) {
	ctx := context.Background()
	owner := "owner-1"

	store := testutil.NewStore()
	projectID := store.AddProject(owner, "HR")
	embedder := testutil.NewHashEmbedder(64)
	index := vectorindex.NewMemoryIndex()
	generator := &testutil.RecordingGenerator{Reply: "You get 15 days of annual leave."}

	uploaded, err := ingest.New(store.Projects(), store.Documents(), chunker.DefaultOptions()).Ingest(ctx, ingest.Request{
		ProjectID:  projectID,
		OwnerID:    owner,
		Title:      "PTO policy",
		Text:       "Annual leave is 15 days",
		Importance: 5,
	})
	require.NoError(t, err)
	require.Equal(t, 1, uploaded.ChunksCreated)

	ix := indexer.New(store.Projects(), store.Documents(), embedder, index, locks.NewMemoryLocker(), nil, indexer.Config{})

	indexed, err := ix.Index(ctx, indexer.Request{ProjectID: projectID, OwnerID: owner, Limit: 300, BatchSize: 64}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, indexed.IndexedCount)

	// second run has nothing left to do
	again, err := ix.Index(ctx, indexer.Request{ProjectID: projectID, OwnerID: owner, Limit: 300, BatchSize: 64}, nil)
	require.NoError(t, err)
	assert.Zero(t, again.IndexedCount)

	conv, err := store.Conversations().Create(ctx, projectID, owner, "", conversations.TemplateShort)
	require.NoError(t, err)

	ret := retriever.New(embedder, index, store.Documents(), nil, retriever.Config{})
	a := agent.New(store.Conversations(), ret, nil, generator, nil, agent.Config{})

	resp, err := a.SendMessage(ctx, agent.SendRequest{
		ConversationID: conv.ID,
		OwnerID:        owner,
		Message:        "How many annual leave days?",
	})
	require.NoError(t, err)

	assert.Equal(t, "You get 15 days of annual leave.", resp.Answer)
	require.NotEmpty(t, resp.Evidence)
	assert.Equal(t, "PTO policy", resp.Evidence[0].DocumentTitle)
	assert.Equal(t, uploaded.Document.ID, resp.Evidence[0].DocumentID)
	assert.Equal(t, 5, resp.Evidence[0].Importance)
	assert.Contains(t, resp.Evidence[0].TextPreview, "Annual leave is 15 days")

	prompt := generator.Last()
	require.Len(t, prompt, 3)
	assert.True(t, strings.Contains(prompt[1].Content, "Annual leave is 15 days"))
	assert.Equal(t, "How many annual leave days?", prompt[2].Content)

	msgs, err := store.Conversations().ListMessages(ctx, conv.ID, owner)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, conversations.RoleUser, msgs[0].Role)
	assert.Equal(t, conversations.RoleAssistant, msgs[1].Role)
}

func TestAskIsScopedToOwner(t *testing.T) {
	ctx := context.Background()

	store := testutil.NewStore()
	alice := store.AddProject("alice", "HR")
	bob := store.AddProject("bob", "HR")
	embedder := testutil.NewHashEmbedder(64)
	index := vectorindex.NewMemoryIndex()

	svc := ingest.New(store.Projects(), store.Documents(), chunker.DefaultOptions())

	_, err := svc.Ingest(ctx, ingest.Request{ProjectID: alice, OwnerID: "alice", Title: "Secret", Text: "Annual leave is 40 days"})
	require.NoError(t, err)

	ix := indexer.New(store.Projects(), store.Documents(), embedder, index, locks.NewMemoryLocker(), nil, indexer.Config{})
	_, err = ix.Index(ctx, indexer.Request{ProjectID: alice, OwnerID: "alice", Limit: 300, BatchSize: 64}, nil)
	require.NoError(t, err)

	conv, err := store.Conversations().Create(ctx, bob, "bob", "", conversations.TemplateShort)
	require.NoError(t, err)

	generator := &testutil.RecordingGenerator{Reply: "I don't know."}
	ret := retriever.New(embedder, index, store.Documents(), nil, retriever.Config{})
	a := agent.New(store.Conversations(), ret, nil, generator, nil, agent.Config{})

	resp, err := a.SendMessage(ctx, agent.SendRequest{ConversationID: conv.ID, OwnerID: "bob", Message: "How many annual leave days?"})
	require.NoError(t, err)
	assert.Empty(t, resp.Evidence)

	for _, m := range generator.Last() {
		assert.NotContains(t, m.Content, "40 days")
	}
}

func TestImportanceBreaksNearTie(t *testing.T) {
	ctx := context.Background()
	owner := "owner-1"

	store := testutil.NewStore()
	projectID := store.AddProject(owner, "HR")
	embedder := testutil.NewHashEmbedder(64)
	index := vectorindex.NewMemoryIndex()
	svc := ingest.New(store.Projects(), store.Documents(), chunker.DefaultOptions())

	// the draft is the closer match on raw similarity (0.60 vs 0.47)
	_, err := svc.Ingest(ctx, ingest.Request{ProjectID: projectID, OwnerID: owner, Title: "Draft", Text: "Annual leave is 15 days", Importance: 1})
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, ingest.Request{ProjectID: projectID, OwnerID: owner, Title: "Policy", Text: "Annual leave is 15 days per calendar year", Importance: 5})
	require.NoError(t, err)

	ix := indexer.New(store.Projects(), store.Documents(), embedder, index, locks.NewMemoryLocker(), nil, indexer.Config{})
	_, err = ix.Index(ctx, indexer.Request{ProjectID: projectID, OwnerID: owner, Limit: 300, BatchSize: 64}, nil)
	require.NoError(t, err)

	conv, err := store.Conversations().Create(ctx, projectID, owner, "", conversations.TemplateShort)
	require.NoError(t, err)

	generator := &testutil.RecordingGenerator{Reply: "15 days."}
	ret := retriever.New(embedder, index, store.Documents(), nil, retriever.Config{})
	a := agent.New(store.Conversations(), ret, nil, generator, nil, agent.Config{})

	resp, err := a.SendMessage(ctx, agent.SendRequest{ConversationID: conv.ID, OwnerID: owner, Message: "How many annual leave days?"})
	require.NoError(t, err)

	require.Len(t, resp.Evidence, 2)
	assert.Equal(t, "Policy", resp.Evidence[0].DocumentTitle)
	assert.Equal(t, "Draft", resp.Evidence[1].DocumentTitle)
}
