package documents

import (
	"context"
	"encoding/json"

	"codeberg.org/kbase/server/internal/ingest"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
)

const (
	maxChunkPreviews = 200
	previewChars     = 300
)

type ProjectReader interface {
	Get(ctx context.Context, projectID, ownerID string) (*projects.Project, error)
}

type DocumentReader interface {
	List(ctx context.Context, projectID, ownerID string) ([]documents.Document, error)
	Get(ctx context.Context, documentID, ownerID string) (*documents.Document, error)
	ListChunks(ctx context.Context, documentID, ownerID string, limit int) ([]documents.Chunk, error)
}

type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (*ingest.Result, error)
}

type Deps struct {
	Projects  ProjectReader
	Documents DocumentReader
	Ingester  Ingester
}

// importance may arrive as a number or a string; tags as an array or a
// comma separated string
type CreateDocumentRequest struct {
	Title            string          `json:"title"`
	Text             string          `json:"text"`
	SourceKind       string          `json:"source_kind"`
	Importance       json.RawMessage `json:"importance"`
	Tags             json.RawMessage `json:"tags"`
	OriginalFilename string          `json:"original_filename"`
	FileSize         int64           `json:"file_size"`
}

type DocumentSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	SourceType string   `json:"source_type"`
	Importance int      `json:"importance"`
	Tags       []string `json:"tags"`
	FileSize   int64    `json:"file_size"`
}

type CreateDocumentResponse struct {
	Document      DocumentSummary `json:"document"`
	ChunksCreated int             `json:"chunks_created"`
}

type ListDocumentsResponse struct {
	Documents []documents.Document `json:"documents"`
}

type ChunkPreview struct {
	ID          string `json:"id"`
	ChunkIndex  int    `json:"chunk_index"`
	Importance  int    `json:"importance"`
	Indexed     bool   `json:"indexed"`
	TextPreview string `json:"text_preview"`
}

type ListChunksResponse struct {
	DocumentID string         `json:"document_id"`
	Chunks     []ChunkPreview `json:"chunks"`
}
