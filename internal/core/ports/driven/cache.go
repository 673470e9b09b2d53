package driven

import "context"

// CacheStore is a namespaced key-value store holding resource results.
//
// An empty value is the in-progress sentinel: the key is reserved by a
// creator that has not stored its result yet. Real results are never empty.
type CacheStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)

	// Reserve atomically reads the current value and, only if the key is
	// absent, stores the in-progress sentinel. It returns the value seen
	// before the write and whether the key existed.
	Reserve(ctx context.Context, namespace, key string) ([]byte, bool, error)

	// Set stores a value, overwriting any previous one.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, namespace, key string) error
}
