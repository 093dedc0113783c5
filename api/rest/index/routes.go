package index

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, deps Deps) {
	group := rg.Group("/projects/:project_id/index")
	{
		group.POST("", IndexProjectHandler(deps.Indexer))
		group.GET("", IndexStatusHandler(deps))
	}
}
