package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// reserveRetries bounds the insert-then-read loop in Reserve. A retry is
// only needed when another process deletes the row between the two statements.
const reserveRetries = 5

// Get returns the stored value. A NULL value is reported as empty.
func (s *cacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var value []byte
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM cache_entries WHERE namespace = ? AND key = ?",
		namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting cache entry: %w", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Reserve plants the in-progress marker if the key is absent.
// The insert is a single atomic statement, so exactly one caller wins.
func (s *cacheStore) Reserve(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	for attempt := 0; attempt < reserveRetries; attempt++ {
		res, err := s.store.db.ExecContext(ctx, `
			INSERT INTO cache_entries (namespace, key, value)
			VALUES (?, ?, NULL)
			ON CONFLICT(namespace, key) DO NOTHING
		`, namespace, key)
		if err != nil {
			return nil, false, fmt.Errorf("reserving cache entry: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, false, fmt.Errorf("reserving cache entry: %w", err)
		}
		if n == 1 {
			return nil, false, nil
		}

		prior, ok, err := s.Get(ctx, namespace, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return prior, true, nil
		}
	}
	return nil, false, fmt.Errorf("reserving cache entry %s/%s: entry kept changing", namespace, key)
}

// Set stores a value. An empty value is written as NULL, the in-progress marker.
func (s *cacheStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	var arg any
	if len(value) > 0 {
		arg = value
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cache_entries (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, namespace, key, arg)
	if err != nil {
		return fmt.Errorf("setting cache entry: %w", err)
	}
	return nil
}

// Delete removes a key.
func (s *cacheStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE namespace = ? AND key = ?", namespace, key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}
