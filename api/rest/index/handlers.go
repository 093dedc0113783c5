package index

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/errors"
	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/gin-gonic/gin"
)

// IndexProjectHandler godoc
// @Summary Index pending chunks of a project
// @Description Embeds chunks not yet indexed under the current embedding model and upserts them into the vector index
// @Tags index
// @Produce json
// @Param project_id path string true "Project ID"
// @Param limit query int false "Maximum chunks (1-2000, default 300)"
// @Param batch query int false "Batch size (1-256, default 64)"
// @Param force query string false "Re-index already indexed chunks"
// @Success 200 {object} indexer.Result
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/projects/{project_id}/index [post]
// @Security BearerAuth
func IndexProjectHandler(ix Indexer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		projectID, ok := errors.ValidatePathUUID(c, "project_id", "project")
		if !ok {
			return
		}

		res, err := ix.Index(c.Request.Context(), indexer.Request{
			ProjectID: projectID,
			OwnerID:   userID,
			Limit:     indexer.ParseLimit(c.Query("limit")),
			BatchSize: indexer.ParseBatchSize(c.Query("batch")),
			Force:     c.Query("force") == "1",
		}, nil)

		switch {
		case err == nil:
			c.JSON(http.StatusOK, res)
		case stderrors.Is(err, projects.ErrProjectNotFound):
			errors.NotFound(c, "project")
		case stderrors.Is(err, locks.ErrLocked):
			errors.Conflict(c, "indexing is already running for this project")
		default:
			errors.InternalError(c, "failed to index project", err)
		}
	}
}

// IndexStatusHandler godoc
// @Summary Indexing progress of a project
// @Tags index
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/projects/{project_id}/index [get]
// @Security BearerAuth
func IndexStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		projectID, ok := errors.ValidatePathUUID(c, "project_id", "project")
		if !ok {
			return
		}

		if _, err := deps.Projects.Get(c.Request.Context(), projectID, userID); err != nil {
			if stderrors.Is(err, projects.ErrProjectNotFound) {
				errors.NotFound(c, "project")
				return
			}

			errors.InternalError(c, "failed to load project", err)
			return
		}

		stats, err := deps.Stats.IndexStats(c.Request.Context(), projectID, userID, deps.Model, deps.Dimension)
		if err != nil {
			errors.InternalError(c, "failed to load index status", err)
			return
		}

		c.JSON(http.StatusOK, StatusResponse{
			ProjectID: projectID,
			Model:     deps.Model,
			Dimension: deps.Dimension,
			Total:     stats.Total,
			Indexed:   stats.Indexed,
			Pending:   stats.Total - stats.Indexed,
		})
	}
}
