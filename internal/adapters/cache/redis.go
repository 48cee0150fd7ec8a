// Package cache fronts the redirect hot path with a redis cache-aside.
// Only eligible resolutions (activated, unexpired) are ever stored, so
// a hit can be redirected without touching the link store. Mutations
// that change eligibility must call Invalidate.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wiroon/shortlink/internal/core/domain"
)

const keyPrefix = "link:"

type RedisLinkCache struct {
	rdb *redis.Client
}

// NewRedisLinkCache pings the server once; a nil return (with error)
// means the address is unreachable. A nil *RedisLinkCache is a valid
// no-op cache, so callers without REDIS_ADDR simply pass nil.
func NewRedisLinkCache(ctx context.Context, addr, password string, db int) (*RedisLinkCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisLinkCache{rdb: rdb}, nil
}

func (c *RedisLinkCache) GetResolution(ctx context.Context, key string) (*domain.Resolution, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("link cache read failed", "key", key, "err", err)
		return nil, false
	}
	var res domain.Resolution
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *RedisLinkCache) SetResolution(ctx context.Context, key string, res *domain.Resolution, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		slog.Warn("link cache write failed", "key", key, "err", err)
	}
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		slog.Warn("link cache invalidation failed", "key", key, "err", err)
	}
}
