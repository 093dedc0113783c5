package main

import (
	"codeberg.org/kbase/server/internal/agent"
	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/config"
	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/ingest"
	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
)

// holds all dependencies and state for the API server
type Server struct {
	db               *pgxpool.Pool
	redis            *redis.Client // nil without REDIS_URL
	config           *config.Config
	projectRepo      *projects.Repository
	documentRepo     *documents.Repository
	conversationRepo *conversations.Repository
	services         *Services
	router           *gin.Engine
}

// holds the pipeline components built from configuration
type Services struct {
	Embedder    llm.Embedder
	Generator   llm.TextGenerator
	Index       vectorindex.Index
	Locker      locks.Locker
	Agent       *agent.Agent
	Indexer     *indexer.Indexer
	Ingest      *ingest.Service
	Metrics     *metrics.Metrics
	Tokens      *auth.Tokens
	SendLimiter *limiter.Limiter
}
