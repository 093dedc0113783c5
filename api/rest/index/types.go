package index

import (
	"context"

	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
)

type Indexer interface {
	Index(ctx context.Context, req indexer.Request, progress indexer.ProgressFunc) (*indexer.Result, error)
}

type ProjectReader interface {
	Get(ctx context.Context, projectID, ownerID string) (*projects.Project, error)
}

type StatsReader interface {
	IndexStats(ctx context.Context, projectID, ownerID, model string, dim int) (documents.IndexStats, error)
}

type Deps struct {
	Indexer  Indexer
	Projects ProjectReader
	Stats    StatsReader

	// embedding space the status endpoint reports against
	Model     string
	Dimension int
}

type StatusResponse struct {
	ProjectID string `json:"project_id"`
	Model     string `json:"embedding_model"`
	Dimension int    `json:"embedding_dim"`
	Total     int    `json:"total"`
	Indexed   int    `json:"indexed"`
	Pending   int    `json:"pending"`
}
