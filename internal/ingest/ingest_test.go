package ingest

import (
	"context"
	"testing"

	"codeberg.org/kbase/server/internal/chunker"
	"codeberg.org/kbase/server/internal/testutil"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*Service, *testutil.Store, string) {
	store := testutil.NewStore()
	projectID := store.AddProject("owner-1", "HR")

	return New(store.Projects(), store.Documents(), chunker.DefaultOptions()), store, projectID
}

func TestIngestCreatesDocumentAndChunks(t *testing.T) {
	svc, store, projectID := newService()

	res, err := svc.Ingest(context.Background(), Request{
		ProjectID:  projectID,
		OwnerID:    "owner-1",
		Title:      "  PTO policy ",
		Text:       "Leave\nAnnual leave is 15 days\n\nSick leave is 10 days\n",
		Importance: 9,
		Tags:       []string{" hr ", "", "policy"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ChunksCreated)
	assert.Equal(t, "PTO policy", res.Document.Title)
	assert.Equal(t, 5, res.Document.Importance)
	assert.Equal(t, documents.SourceText, res.Document.SourceKind)
	assert.Equal(t, []string{"hr", "policy"}, res.Document.Tags)

	chunks := store.AllChunks()
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, 5, c.Importance)
		assert.Equal(t, []string{"hr", "policy"}, c.Tags)
		assert.Nil(t, c.VectorID)
	}

	assert.Equal(t, "Leave\nAnnual leave is 15 days", chunks[0].Text)
}

func TestIngestRejectsEmptyText(t *testing.T) {
	svc, store, projectID := newService()

	_, err := svc.Ingest(context.Background(), Request{ProjectID: projectID, OwnerID: "owner-1", Text: "  \n "})
	assert.ErrorIs(t, err, ErrNoText)

	// only sub-two-character lines: no units, nothing stored
	_, err = svc.Ingest(context.Background(), Request{ProjectID: projectID, OwnerID: "owner-1", Text: "a\nb"})
	assert.ErrorIs(t, err, ErrNoText)

	assert.Empty(t, store.AllChunks())
}

func TestIngestValidation(t *testing.T) {
	svc, _, projectID := newService()

	_, err := svc.Ingest(context.Background(), Request{ProjectID: projectID, OwnerID: "owner-1", Text: "hello", SourceKind: "docx"})
	assert.ErrorIs(t, err, ErrInvalidSourceKind)

	_, err = svc.Ingest(context.Background(), Request{ProjectID: projectID, OwnerID: "owner-1", Text: "hello", FileSize: MaxUploadBytes + 1})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.Ingest(context.Background(), Request{ProjectID: projectID, OwnerID: "intruder", Text: "hello"})
	assert.ErrorIs(t, err, projects.ErrProjectNotFound)
}

func TestIngestTitleFallsBackToFilename(t *testing.T) {
	svc, _, projectID := newService()

	res, err := svc.Ingest(context.Background(), Request{
		ProjectID:        projectID,
		OwnerID:          "owner-1",
		Text:             "content line",
		OriginalFilename: "handbook.pdf",
		SourceKind:       documents.SourcePDF,
	})
	require.NoError(t, err)
	assert.Equal(t, "handbook.pdf", res.Document.Title)
	assert.Equal(t, 1, res.Document.Importance)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 3, ParseImportance(""))
	assert.Equal(t, 3, ParseImportance("very"))
	assert.Equal(t, 1, ParseImportance("0"))
	assert.Equal(t, 5, ParseImportance("42"))
	assert.Equal(t, 4, ParseImportance(" 4 "))

	assert.Equal(t, []string{"a", "b c"}, ParseTags(" a, ,b c ,"))
	assert.Empty(t, ParseTags(""))
}
