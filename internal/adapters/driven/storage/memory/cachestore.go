package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore.
// Reservations are atomic within a single process only.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]map[string][]byte
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[string]map[string][]byte),
	}
}

// Get returns a copy of the stored value.
func (s *CacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// Reserve stores the in-progress sentinel if the key is absent.
func (s *CacheStore) Reserve(_ context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.entries[namespace][key]; ok {
		return clone(v), true, nil
	}
	s.bucket(namespace)[key] = []byte{}
	return nil, false, nil
}

// Set stores a value.
func (s *CacheStore) Set(_ context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket(namespace)[key] = clone(value)
	return nil
}

// Delete removes a key.
func (s *CacheStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[namespace], key)
	return nil
}

// bucket must be called with the write lock held.
func (s *CacheStore) bucket(namespace string) map[string][]byte {
	b, ok := s.entries[namespace]
	if !ok {
		b = make(map[string][]byte)
		s.entries[namespace] = b
	}
	return b
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
