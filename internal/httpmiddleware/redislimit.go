package httpmiddleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixedWindow counts requests per key in one-minute windows shared
// across all instances. Fails open: if redis is down the request proceeds.
type RedisFixedWindow struct {
	client *redis.Client
	limit  int
	prefix string
}

// NewRedisFixedWindow creates a redis-backed limiter allowing perMinute
// requests per key.
func NewRedisFixedWindow(client *redis.Client, perMinute int) *RedisFixedWindow {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RedisFixedWindow{client: client, limit: perMinute, prefix: "campuslens:ratelimit:"}
}

// Allow increments the current window's counter for key.
func (l *RedisFixedWindow) Allow(ctx context.Context, key string) bool {
	window := time.Now().UTC().Format("200601021504")
	redisKey := l.prefix + key + ":" + window

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}
	return count.Val() <= int64(l.limit)
}
