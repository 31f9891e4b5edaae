// Package app assembles the running service from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/api"
	"github.com/icancodefyi/sarthi-ai/internal/client/analytics"
	"github.com/icancodefyi/sarthi-ai/internal/client/llm"
	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/qr"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/redis"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

// App holds the open resources of a configured service
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Deps     api.Deps
	Services *api.Services

	redisClient *goredis.Client
}

// New opens the database, seeds users and wires every service. Redis is
// optional: when it is disabled or unreachable LLM calls are not gated.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	users := directory.NewSQLUsers(repository.NewUserRepo(db))
	if err := users.Seed(ctx, cfg.App.Users); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	registry, err := directory.LoadRegistry(cfg.Registry.FarmersFile)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load farmer registry: %w", err)
	}

	encoder, err := qr.NewEncoder(cfg.QR)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid qr config: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	var slots *redis.SlotPool
	if cfg.RedisService.Enabled {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := redis.Connect(pingCtx, cfg)
		cancel()
		if err != nil {
			zap.L().Warn("Redis initialization failed, LLM concurrency limiting will be disabled",
				zap.Error(err))
		} else {
			a.redisClient = client
			slots = redis.NewSlotPool(client)
		}
	}

	a.Deps = api.Deps{
		Config:    cfg,
		DB:        db,
		Users:     users,
		Registry:  registry,
		Processor: analytics.New(cfg.AnalyticsService),
		Narrator:  llm.New(cfg.LLM, slots, cfg.RedisService.MaxWaitTime),
		QR:        encoder,
		Slots:     slots,
	}
	a.Services = api.NewServices(a.Deps)

	zap.L().Info("Application initialized",
		zap.String("database", cfg.Database.Path),
		zap.Int("farmers", registry.Len()),
		zap.Bool("redis", slots != nil))

	return a, nil
}

// Engine returns the HTTP handler for every route
func (a *App) Engine() *gin.Engine {
	return api.NewEngine(a.Deps, a.Services)
}

// Close waits for background analytics jobs and releases resources
func (a *App) Close() error {
	a.Services.Datasets.Wait()
	if a.redisClient != nil {
		a.redisClient.Close()
	}
	return a.DB.Close()
}
