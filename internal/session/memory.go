package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps revoked tokens in process memory.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (s *MemoryStore) Add(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(fingerprint(token), struct{}{}, ttl)
	return nil
}

func (s *MemoryStore) Contains(_ context.Context, token string) (bool, error) {
	_, found := s.cache.Get(fingerprint(token))
	return found, nil
}
