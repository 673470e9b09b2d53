package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "litmapper:"

// Store groups the Redis-backed stores around a single client.
type Store struct {
	client *goredis.Client
	prefix string
}

// NewStore connects to the server at url, e.g. "redis://localhost:6379/0",
// and verifies the connection.
func NewStore(ctx context.Context, url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewStoreFromClient(client, DefaultPrefix), nil
}

// NewStoreFromClient wraps an existing client.
func NewStoreFromClient(client *goredis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// CacheStore returns a CacheStore backed by this store.
func (s *Store) CacheStore() driven.CacheStore {
	return &cacheStore{store: s}
}

// JobStore returns a JobStore backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{store: s}
}

// TaskQueue returns a TaskQueue that blocks for up to pollInterval per
// request. Redis cannot block for less than a second.
func (s *Store) TaskQueue(pollInterval time.Duration) driven.TaskQueue {
	if pollInterval < time.Second {
		pollInterval = time.Second
	}
	return &taskQueue{store: s, pollInterval: pollInterval}
}

func (s *Store) key(parts ...string) string {
	return s.prefix + strings.Join(parts, ":")
}
