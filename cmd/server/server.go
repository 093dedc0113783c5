package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/kbase/server/internal/config"
	"codeberg.org/kbase/server/knowledge/conversations"
	"codeberg.org/kbase/server/knowledge/documents"
	"codeberg.org/kbase/server/knowledge/projects"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	db, err := newPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}

		redisClient = redis.NewClient(opts)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
			db.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
	}

	projectRepo := projects.NewRepository(db)
	documentRepo := documents.NewRepository(db)
	conversationRepo := conversations.NewRepository(db)

	services, err := InitializeServices(cfg, db, redisClient, projectRepo, documentRepo, conversationRepo)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}

		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		db:               db,
		redis:            redisClient,
		config:           cfg,
		projectRepo:      projectRepo,
		documentRepo:     documentRepo,
		conversationRepo: conversationRepo,
		services:         services,
		router:           router,
	}

	RegisterRoutes(router, server)

	return server, nil
}

func newPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// releases connections in reverse order of creation
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	s.db.Close()
}
