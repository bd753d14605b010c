// Package cache wraps the Redis client used for hot-path lookups (project
// membership, permission matrices) and for the dispatch ledger.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
)

// Connect opens a Redis client and verifies connectivity with a short ping.
func Connect(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to connect to redis")
	}

	logger.Info("redis connected",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)
	return client, nil
}
