package main

import (
	"context"
	"fmt"

	"codeberg.org/kbase/server/internal/config"
	"codeberg.org/kbase/server/internal/indexer"
	"codeberg.org/kbase/server/internal/llm"
	"codeberg.org/kbase/server/internal/locks"
	"codeberg.org/kbase/server/internal/vectorindex"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/jackc/pgx/v5/pgxpool"
)

// components shared by the commands
type env struct {
	cfg       *config.Config
	db        *pgxpool.Pool
	projects  *projects.Repository
	documents *documents.Repository
	embedder  llm.Embedder
	indexer   *indexer.Indexer
	locker    locks.Locker
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	embedder, err := llm.NewEmbedder(llm.EmbedderConfigFrom(cfg))
	if err != nil {
		db.Close()
		return nil, err
	}

	index, err := vectorindex.NewPGIndex(db, cfg.EmbeddingDim)
	if err != nil {
		db.Close()
		return nil, err
	}

	// the lock must be shared with the API server to exclude concurrent runs
	var locker locks.Locker = locks.NewMemoryLocker()

	if cfg.RedisURL != "" {
		redisLocker, err := locks.NewRedisLockerFromURL(cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}

		locker = redisLocker
	}

	projectRepo := projects.NewRepository(db)
	documentRepo := documents.NewRepository(db)

	return &env{
		cfg:       cfg,
		db:        db,
		projects:  projectRepo,
		documents: documentRepo,
		embedder:  embedder,
		locker:    locker,
		indexer: indexer.New(projectRepo, documentRepo, embedder, index, locker, nil, indexer.Config{
			CallTimeout: cfg.Pipeline.CallTimeout,
		}),
	}, nil
}

func (e *env) Close() {
	if closer, ok := e.locker.(*locks.RedisLocker); ok {
		closer.Close() //nolint:errcheck,gosec // best-effort cleanup
	}

	e.db.Close()
}

// one project when both flags are set, otherwise every project
func (e *env) targets(ctx context.Context, projectID, ownerID string) ([]projects.Project, error) {
	if projectID != "" {
		if ownerID == "" {
			return nil, fmt.Errorf("--owner is required with --project")
		}

		p, err := e.projects.Get(ctx, projectID, ownerID)
		if err != nil {
			return nil, err
		}

		return []projects.Project{*p}, nil
	}

	if ownerID != "" {
		return e.projects.List(ctx, ownerID)
	}

	return e.projects.ListAll(ctx)
}
