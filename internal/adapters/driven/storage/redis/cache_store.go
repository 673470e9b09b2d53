package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore with one hash per namespace.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

func (s *cacheStore) hashKey(namespace string) string {
	return s.store.key("cache", namespace)
}

// Get returns the stored value.
func (s *cacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	value, err := s.store.client.HGet(ctx, s.hashKey(namespace), key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting cache entry: %w", err)
	}
	return value, true, nil
}

// Reserve reads the field and sets the empty marker if absent inside one
// MULTI/EXEC block, so no other client can interleave.
func (s *cacheStore) Reserve(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	hash := s.hashKey(namespace)

	var get *goredis.StringCmd
	_, err := s.store.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		get = pipe.HGet(ctx, hash, key)
		pipe.HSetNX(ctx, hash, key, "")
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, false, fmt.Errorf("reserving cache entry: %w", err)
	}

	prior, err := get.Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reserving cache entry: %w", err)
	}
	return prior, true, nil
}

// Set stores a value.
func (s *cacheStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := s.store.client.HSet(ctx, s.hashKey(namespace), key, value).Err(); err != nil {
		return fmt.Errorf("setting cache entry: %w", err)
	}
	return nil
}

// Delete removes a key.
func (s *cacheStore) Delete(ctx context.Context, namespace, key string) error {
	if err := s.store.client.HDel(ctx, s.hashKey(namespace), key).Err(); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}
