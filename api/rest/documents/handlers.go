package documents

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/errors"
	"codeberg.org/kbase/server/internal/ingest"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/gin-gonic/gin"
)

// ListDocumentsHandler godoc
// @Summary List documents of a project
// @Tags documents
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {object} ListDocumentsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/projects/{project_id}/documents [get]
// @Security BearerAuth
func ListDocumentsHandler(projectRepo ProjectReader, docRepo DocumentReader) gin.HandlerFunc {
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

		if _, err := projectRepo.Get(c.Request.Context(), projectID, userID); err != nil {
			respondProjectError(c, err)
			return
		}

		docs, err := docRepo.List(c.Request.Context(), projectID, userID)
		if err != nil {
			errors.InternalError(c, "failed to list documents", err)
			return
		}

		c.JSON(http.StatusOK, ListDocumentsResponse{Documents: docs})
	}
}

// CreateDocumentHandler godoc
// @Summary Create a document from extracted text
// @Description Splits the text into context-windowed chunks stored with the document in one transaction
// @Tags documents
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param request body CreateDocumentRequest true "Document"
// @Success 201 {object} CreateDocumentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/projects/{project_id}/documents [post]
// @Security BearerAuth
func CreateDocumentHandler(ingester Ingester) gin.HandlerFunc {
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

		var req CreateDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		tags, err := parseTags(req.Tags)
		if err != nil {
			errors.BadRequest(c, "tags must be an array of strings or a comma separated string", nil)
			return
		}

		res, err := ingester.Ingest(c.Request.Context(), ingest.Request{
			ProjectID:        projectID,
			OwnerID:          userID,
			Title:            req.Title,
			Text:             req.Text,
			SourceKind:       documents.SourceKind(req.SourceKind),
			Importance:       parseImportance(req.Importance),
			Tags:             tags,
			OriginalFilename: req.OriginalFilename,
			FileSize:         req.FileSize,
		})

		switch {
		case err == nil:
		case stderrors.Is(err, ingest.ErrNoText):
			errors.BadRequestCode(c, errors.CodeNoTextExtracted, "no text could be extracted from the document")
			return
		case stderrors.Is(err, ingest.ErrFileTooLarge):
			errors.BadRequestCode(c, errors.CodeFileTooLarge, "file exceeds the 30 MB upload limit")
			return
		case stderrors.Is(err, ingest.ErrInvalidSourceKind):
			errors.ValidationError(c, err)
			return
		default:
			respondProjectError(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateDocumentResponse{
			Document: DocumentSummary{
				ID:         res.Document.ID,
				Title:      res.Document.Title,
				SourceType: string(res.Document.SourceKind),
				Importance: res.Document.Importance,
				Tags:       res.Document.Tags,
				FileSize:   res.Document.FileSize,
			},
			ChunksCreated: res.ChunksCreated,
		})
	}
}

// ListChunksHandler godoc
// @Summary Preview the chunks of a document
// @Tags documents
// @Produce json
// @Param document_id path string true "Document ID"
// @Success 200 {object} ListChunksResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/documents/{document_id}/chunks [get]
// @Security BearerAuth
func ListChunksHandler(docRepo DocumentReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		documentID, ok := errors.ValidatePathUUID(c, "document_id", "document")
		if !ok {
			return
		}

		if _, err := docRepo.Get(c.Request.Context(), documentID, userID); err != nil {
			if stderrors.Is(err, documents.ErrDocumentNotFound) {
				errors.NotFound(c, "document")
				return
			}

			errors.InternalError(c, "failed to load document", err)
			return
		}

		chunks, err := docRepo.ListChunks(c.Request.Context(), documentID, userID, maxChunkPreviews)
		if err != nil {
			errors.InternalError(c, "failed to list chunks", err)
			return
		}

		previews := make([]ChunkPreview, 0, len(chunks))
		for _, ch := range chunks {
			previews = append(previews, ChunkPreview{
				ID:          ch.ID,
				ChunkIndex:  ch.Position,
				Importance:  ch.Importance,
				Indexed:     ch.IndexedAt != nil,
				TextPreview: truncate(ch.Text, previewChars),
			})
		}

		c.JSON(http.StatusOK, ListChunksResponse{DocumentID: documentID, Chunks: previews})
	}
}

func respondProjectError(c *gin.Context, err error) {
	if stderrors.Is(err, projects.ErrProjectNotFound) {
		errors.NotFound(c, "project")
		return
	}

	errors.InternalError(c, "failed to load project", err)
}
