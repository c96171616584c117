package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ContentCache is a thin JSON cache over Redis for the public read paths
// (published post pages, slug lookups, menu tree). Failures are logged and
// treated as cache misses; Redis being down must never break a read.
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewContentCache builds the cache wrapper.
func NewContentCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ContentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ContentCache{client: client, ttl: ttl, logger: logger}
}

// Get unmarshals the cached value for key into dest, reporting whether a
// usable entry was found.
func (c *ContentCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Debug("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value under key with the configured TTL.
func (c *ContentCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidatePrefix removes every key under the given prefix.
func (c *ContentCache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Debug("cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Debug("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
