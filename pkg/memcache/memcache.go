package memcache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store is the single process stand-in for the Redis delivery store.
type Store struct {
	cache *cache.Cache
}

// New builds a store. A zero cleanupInterval disables the janitor goroutine.
func New(defaultTTL, cleanupInterval time.Duration) *Store {
	return &Store{cache: cache.New(defaultTTL, cleanupInterval)}
}

// Claim reports true the first time key is seen within ttl.
func (s *Store) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.cache.Add(key, time.Now(), ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *Store) Release(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
