package main

import (
	"fmt"

	"codeberg.org/kbase/server/internal/agent"
	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/chunker"
	"codeberg.org/kbase/server/internal/config"
	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/ingest"
	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/logger"
	"codeberg.org/kbase/server/internal/metrics"
	"codeberg.org/kbase/server/internal/ratelimit"
	"codeberg.org/kbase/server/internal/reranker"
	"codeberg.org/kbase/server/internal/retriever"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// creates and configures all service clients
func InitializeServices(
	cfg *config.Config,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	projectRepo *projects.Repository,
	documentRepo *documents.Repository,
	conversationRepo *conversations.Repository,
) (*Services, error) {
	pipeline := cfg.Pipeline
	m := metrics.New()

	embedder, err := llm.NewEmbedder(llm.EmbedderConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	generatorConfig, err := llm.GeneratorConfigFrom(cfg)
	if err != nil {
		return nil, err
	}

	generator, err := llm.NewTextGenerator(generatorConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}

	index, err := vectorindex.NewPGIndex(db, cfg.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}

	// reranking stays optional; requests asking for it record a skip
	var rr retriever.Reranker

	if cfg.RerankerEnabled {
		client, err := reranker.NewClient(reranker.Config{
			APIKey: cfg.RerankerAPIKey,
			Model:  cfg.RerankerModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create reranker: %w", err)
		}

		rr = client
	}

	var locker locks.Locker = locks.NewMemoryLocker()
	if redisClient != nil {
		locker = locks.NewRedisLocker(redisClient)
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, auth.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}

	sendLimiter, err := ratelimit.New(cfg.MessageRateLimit, redisClient)
	if err != nil {
		return nil, err
	}

	ret := retriever.New(embedder, index, documentRepo, m, retriever.Config{
		TopK:             pipeline.TopK,
		ImportanceWeight: &pipeline.ImportanceWeight,
		CallTimeout:      pipeline.CallTimeout,
	})

	agentClient := agent.New(conversationRepo, ret, rr, generator, m, agent.Config{
		ContextLimit:  pipeline.ContextLimit,
		EvidenceLimit: pipeline.EvidenceLimit,
		RerankMaxDocs: pipeline.RerankMaxDocs,
		RerankTopN:    pipeline.RerankTopN,
		CallTimeout:   pipeline.CallTimeout,
	})

	indexerClient := indexer.New(projectRepo, documentRepo, embedder, index, locker, m, indexer.Config{
		CallTimeout: pipeline.CallTimeout,
	})

	ingestService := ingest.New(projectRepo, documentRepo, chunker.Options{
		Window:   pipeline.ChunkWindow,
		MaxChars: pipeline.ChunkMaxChars,
	})

	logger.Info("services initialized",
		"embedding_model", embedder.Model(),
		"embedding_dim", embedder.Dimension(),
		"generator_model", generator.Model(),
		"reranker_enabled", rr != nil,
		"redis", redisClient != nil,
	)

	return &Services{
		Embedder:    embedder,
		Generator:   generator,
		Index:       index,
		Locker:      locker,
		Agent:       agentClient,
		Indexer:     indexerClient,
		Ingest:      ingestService,
		Metrics:     m,
		Tokens:      tokens,
		SendLimiter: sendLimiter,
	}, nil
}
