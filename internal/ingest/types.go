package ingest

import (
	"context"

	"codeberg.org/kbase/server/internal/chunker"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
)

type ProjectStore interface {
	Get(ctx context.Context, projectID, ownerID string) (*projects.Project, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc documents.NewDocument) (*documents.Document, error)
}

// already-extracted document text plus upload attributes
type Request struct {
	ProjectID        string
	OwnerID          string
	Title            string
	Text             string
	SourceKind       documents.SourceKind
	Importance       int
	Tags             []string
	OriginalFilename string
	FileSize         int64
}

type Result struct {
	Document      *documents.Document `json:"document"`
	ChunksCreated int                 `json:"chunks_created"`
}

// turns extracted text into a stored document with context-windowed chunks
type Service struct {
	projects  ProjectStore
	documents DocumentStore
	options   chunker.Options
}
