package cache

import (
	"context"
	"time"

	redisrepo "go-studioadmin/internal/repository/redis"
)

// RedisAdapter is the shared L2 so that every API instance sees the same invalidations.
type RedisAdapter struct {
	c      *redisrepo.Client
	prefix string
}

func NewRedisAdapter(c *redisrepo.Client, prefix string) *RedisAdapter {
	return &RedisAdapter{c: c, prefix: prefix}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	return r.c.Get(ctx, r.prefix+key), nil
}

func (r *RedisAdapter) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.c.SetTTL(ctx, r.prefix+key, val, ttl)
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.c.Del(ctx, full...)
}

// RemainingTTL reports false for missing keys (-2) and keys without expiry (-1).
func (r *RedisAdapter) RemainingTTL(ctx context.Context, key string) (time.Duration, bool) {
	res := r.c.Client.TTL(ctx, r.prefix+key)
	if err := res.Err(); err != nil {
		return 0, false
	}
	if d := res.Val(); d > 0 {
		return d, true
	}
	return 0, false
}
