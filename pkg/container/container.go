package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"blogmap-backend/internal/config"
	"blogmap-backend/internal/domains/author"
	"blogmap-backend/internal/domains/paper"
	"blogmap-backend/internal/domains/resource"
	resourceHandler "blogmap-backend/internal/domains/resource/handler"
	infraCache "blogmap-backend/internal/infrastructure/cache"
	"blogmap-backend/internal/infrastructure/database"
	"blogmap-backend/internal/store"
	"blogmap-backend/pkg/cache"
)

// Container holds the application's dependency graph.
// Initialization order matters: config → infrastructure → store →
// services → handlers.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache
	Store  store.Store

	AuthorService *resource.Service
	PaperService  *resource.Service

	AuthorHandler *resourceHandler.ResourceHandler
	PaperHandler  *resourceHandler.ResourceHandler

	redis *infraCache.RedisCache
}

// NewContainer builds and initializes the whole dependency graph.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("Config loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	c.DB = database.NewPostgresDB(dbConfig)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c.redis = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.redis.Connect(ctx); err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = c.redis

	c.Store = store.NewPostgresStore(c.DB.Pool, c.Cache)

	c.AuthorService = resource.NewService(author.Definition(), c.Store)
	c.PaperService = resource.NewService(paper.Definition(cfg.Paper), c.Store)

	c.AuthorHandler = resourceHandler.NewResourceHandler(c.AuthorService, cfg.App.ExposeDebugErrors)
	c.PaperHandler = resourceHandler.NewResourceHandler(c.PaperService, cfg.App.ExposeDebugErrors)

	log.Info().Msg("Container initialized")
	return c, nil
}

// Cleanup releases infrastructure handles. Called once on shutdown.
func (c *Container) Cleanup() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
