package ratelimit

import (
	"context"
	"time"

	redisadapter "github.com/aerofare/booking-engine/internal/adapters/redis"
)

type Limiter struct {
	cache *redisadapter.Cache
}

func NewLimiter(cache *redisadapter.Cache) *Limiter {
	return &Limiter{cache: cache}
}

// Allow fails open: if Redis is unreachable the request goes through,
// since rate limiting is protective, not correctness-critical.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	n, err := l.cache.CountInWindow(ctx, key, window)
	if err != nil {
		return true
	}
	return n <= int64(limit)
}
