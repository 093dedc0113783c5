package documents

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

type SourceKind string

const (
	SourceExcel SourceKind = "excel"
	SourcePDF   SourceKind = "pdf"
	SourceText  SourceKind = "text"
)

func (k SourceKind) Valid() bool {
	switch k {
	case SourceExcel, SourcePDF, SourceText:
		return true
	}

	return false
}

type Document struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	OwnerID          string     `json:"owner_id"`
	Title            string     `json:"title"`
	SourceKind       SourceKind `json:"source_kind"`
	Importance       int        `json:"importance"`
	Tags             []string   `json:"tags"`
	ExtractedText    string     `json:"-"`
	OriginalFilename string     `json:"original_filename,omitempty"`
	FileSize         int64      `json:"file_size"`
	ChunkCount       int        `json:"chunk_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// a chunk with its parent document's title and kind joined in.
// importance and tags are a snapshot taken when the chunk was created.
type Chunk struct {
	ID             string     `json:"id"`
	DocumentID     string     `json:"document_id"`
	ProjectID      string     `json:"project_id"`
	OwnerID        string     `json:"owner_id"`
	Position       int        `json:"position"`
	Text           string     `json:"text"`
	Importance     int        `json:"importance"`
	Tags           []string   `json:"tags"`
	VectorID       *string    `json:"vector_id,omitempty"`
	IndexedAt      *time.Time `json:"indexed_at,omitempty"`
	EmbeddingModel *string    `json:"embedding_model,omitempty"`
	EmbeddingDim   *int       `json:"embedding_dim,omitempty"`
	DocumentTitle  string     `json:"document_title"`
	SourceKind     SourceKind `json:"source_kind"`
}

// reports whether every indexing field is set and matches the current embedding config
func (c Chunk) IsIndexed(model string, dim int) bool {
	if c.VectorID == nil || strings.TrimSpace(*c.VectorID) == "" {
		return false
	}

	if c.IndexedAt == nil || c.EmbeddingModel == nil || c.EmbeddingDim == nil {
		return false
	}

	return *c.EmbeddingModel == model && *c.EmbeddingDim == dim
}

// the chunk's existing external id, if it has a usable one
func (c Chunk) ExistingVectorID() (string, bool) {
	if c.VectorID == nil {
		return "", false
	}

	id := strings.TrimSpace(*c.VectorID)

	return id, id != ""
}

// input for Create; chunk texts are stored in order as positions 0..n-1
type NewDocument struct {
	ProjectID        string
	OwnerID          string
	Title            string
	SourceKind       SourceKind
	Importance       int
	Tags             []string
	ExtractedText    string
	OriginalFilename string
	FileSize         int64
	Chunks           []string
}

// external id assigned to a chunk after a successful upsert
type IndexedChunk struct {
	ChunkID  string
	VectorID string
}

// selects chunks that still need indexing
type IndexableFilter struct {
	ProjectID string
	OwnerID   string
	Model     string
	Dimension int
	Force     bool
	Limit     int
}

type IndexStats struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
}
