package main

import (
	"codeberg.org/kbase/server/api/rest/conversations"
	"codeberg.org/kbase/server/api/rest/documents"
	"codeberg.org/kbase/server/api/rest/health"
	"codeberg.org/kbase/server/api/rest/index"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	services := server.services

	router.Use(RequestLogger())
	router.Use(CORSMiddleware(server.config.CORSOrigins))

	router.GET("/health", health.Handler(server.db))
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	v1.GET("/ping", health.PingHandler)

	protected := v1.Group("", services.Tokens.Middleware())
	{
		documents.RegisterRoutes(protected, documents.Deps{
			Projects:  server.projectRepo,
			Documents: server.documentRepo,
			Ingester:  services.Ingest,
		})

		index.RegisterRoutes(protected, index.Deps{
			Indexer:   services.Indexer,
			Projects:  server.projectRepo,
			Stats:     server.documentRepo,
			Model:     services.Embedder.Model(),
			Dimension: services.Embedder.Dimension(),
		})

		conversations.RegisterRoutes(protected, conversations.Deps{
			Projects:      server.projectRepo,
			Conversations: server.conversationRepo,
			Sender:        services.Agent,
			SendLimiter:   ratelimit.Middleware(services.SendLimiter),
		})
	}
}
