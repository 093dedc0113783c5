package documents

import "github.com/gin-gonic/gin"

// rg must already require authentication
func RegisterRoutes(rg *gin.RouterGroup, deps Deps) {
	projects := rg.Group("/projects/:project_id/documents")
	{
		projects.GET("", ListDocumentsHandler(deps.Projects, deps.Documents))
		projects.POST("", CreateDocumentHandler(deps.Ingester))
	}

	rg.GET("/documents/:document_id/chunks", ListChunksHandler(deps.Documents))
}
