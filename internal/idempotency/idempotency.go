package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/aerofare/booking-engine/internal/adapters/redis"
)

// Service caches POST responses per Idempotency-Key so network-level
// retries replay the original response. Engine-level idempotency of
// confirm (per temp reference) is separate and lives in the ledger.
type Service struct {
	cache *redisadapter.Cache
	ttl   time.Duration
}

func New(cache *redisadapter.Cache, ttl time.Duration) *Service {
	return &Service{cache: cache, ttl: ttl}
}

type Response struct {
	Status int
	Body   []byte
}

func (s *Service) Get(ctx context.Context, key string) (*Response, error) {
	cached, err := s.cache.GetResponse(ctx, key)
	if err != nil || cached == nil {
		return nil, err
	}
	return &Response{Status: cached.Status, Body: cached.Body}, nil
}

func (s *Service) Set(ctx context.Context, key string, resp Response) error {
	return s.cache.SetResponse(ctx, key, redisadapter.CachedResponse{Status: resp.Status, Body: resp.Body}, s.ttl)
}
