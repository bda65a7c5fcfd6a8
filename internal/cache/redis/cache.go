// Package redis provides a repository.Cache backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/repository"
)

// Config contains Redis connection settings.
type Config struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

// NewClient creates a client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return client, nil
}

// Cache implements repository.Cache on a Redis client.
type Cache struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// NewCache wraps client.
func NewCache(client redis.UniversalClient, logger zerolog.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("GET failed")
		return nil, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return b, nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return nil
}

// SetNX sets a value only if the key doesn't exist.
func (c *Cache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return ok, nil
}

// Delete removes values by key.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return nil
}

// Exists checks if a key exists.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return n == 1, nil
}

// Increment atomically increments an integer value with INCRBY.
func (c *Cache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	n, err := c.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", repository.ErrCacheUnavailable, err)
	}
	return n, nil
}

var _ repository.Cache = (*Cache)(nil)
