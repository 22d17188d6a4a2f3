// Package cache holds the Redis client and the structures built on it.
package cache

import (
	"context"
	"log/slog"

	"ventas/config"
	"ventas/internal/domain/lifecycle"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewRedisClient returns nil when Redis is not configured. An unreachable
// server at startup is logged but not fatal; callers degrade instead.
func NewRedisClient(params Params) *redis.Client {
	cfg := params.Config.Redis
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Redis not configured, rate limiting disabled")

		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				params.Logger.Warn("Redis ping failed, continuing without it",
					slog.String("addr", cfg.Addr),
					slog.Any("error", err),
				)
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client
}
