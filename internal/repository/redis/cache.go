package redis

import (
	"context"
	"errors"
	"time"

	"shopPulse/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the shared Redis client with the best-effort operations the
// personalization services rely on. Cache unavailability must never fail a
// caller: reads degrade to a miss, writes log and no-op. Blocking is bounded
// by the client's dial/read/write timeouts.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
	}
}

// Get returns the value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache get failed", "key", key, "error", err)
		}
		return "", false
	}

	return val, true
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("cache delete failed", "keys", len(keys), "error", err)
	}
}

// DeletePattern removes every key matching the glob pattern using SCAN so
// the server is never blocked by a KEYS call.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			logger.Warn("cache scan failed", "pattern", pattern, "error", err)
			return
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				logger.Warn("cache pattern delete failed", "pattern", pattern, "error", err)
				return
			}
		}

		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// ListPush pushes a value onto the head of a list.
func (c *Cache) ListPush(ctx context.Context, key, value string) {
	if err := c.client.LPush(ctx, key, value).Err(); err != nil {
		logger.Warn("cache list push failed", "key", key, "error", err)
	}
}

func (c *Cache) ListRange(ctx context.Context, key string, start, stop int64) []string {
	vals, err := c.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache list range failed", "key", key, "error", err)
		}
		return nil
	}

	return vals
}

func (c *Cache) ListTrim(ctx context.Context, key string, start, stop int64) {
	if err := c.client.LTrim(ctx, key, start, stop).Err(); err != nil {
		logger.Warn("cache list trim failed", "key", key, "error", err)
	}
}

// Increment adds one to a counter key and returns the new value, or 0 when
// the cache is unavailable.
func (c *Cache) Increment(ctx context.Context, key string) int64 {
	val, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn("cache increment failed", "key", key, "error", err)
		return 0
	}

	return val
}

func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) {
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		logger.Warn("cache expire failed", "key", key, "error", err)
	}
}

// TTL reports the remaining lifetime of a key. The second return is false
// when the key is missing, has no expiry, or the cache is unavailable.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, bool) {
	d, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		logger.Warn("cache ttl failed", "key", key, "error", err)
		return 0, false
	}

	// go-redis reports "no expiry" and "missing key" as negative durations.
	if d < 0 {
		return 0, false
	}

	return d, true
}
