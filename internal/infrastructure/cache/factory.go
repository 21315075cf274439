package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

// NewRedisClient opens a pooled client and verifies it with a PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Stores bundles the cache-backed components. Client is nil when running
// in memory.
type Stores struct {
	Client      *redis.Client
	Idempotency shared.IdempotencyStore
	Reports     ReportCache
}

// NewStores builds Redis-backed stores when Redis is enabled and reachable.
// An unreachable Redis falls back to memory with a warning.
func NewStores(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Stores {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Enabled {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			logger.Info("using Redis cache", zap.String("addr", cfg.Addr()))
			return &Stores{
				Client:      client,
				Idempotency: NewRedisIdempotencyStore(client),
				Reports:     NewRedisReportCache(client, DefaultReportTTL),
			}
		}
		logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Token revocation and event idempotency will not be shared across instances.",
			zap.Error(err))
	}
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		Reports:     NewInMemoryReportCache(DefaultReportTTL),
	}
}

// Close releases the idempotency store and the Redis client
func (s *Stores) Close() error {
	err := s.Idempotency.Close()
	if s.Client != nil {
		if cerr := s.Client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
