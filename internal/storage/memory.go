package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps JSON blobs in process memory. It is the default backend
// for single-instance deployments and for tests.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

// Get unmarshals the stored value for key into out.
func (s *MemoryStore) Get(_ context.Context, key string, out any) (bool, error) {
	raw, ok := s.cache.Get(Prefix + key)
	if !ok {
		return false, nil
	}

	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected value type for key %q", key)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key, replacing any previous value.
func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	s.cache.Set(Prefix+key, data, gocache.NoExpiration)
	return nil
}

// Remove deletes the value stored under key.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.cache.Delete(Prefix + key)
	return nil
}

// Clear removes every key in this store's namespace.
func (s *MemoryStore) Clear(_ context.Context) error {
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, Prefix) {
			s.cache.Delete(key)
		}
	}
	return nil
}
