package sqlite

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_GetMissing(t *testing.T) {
	cache := setupTestStore(t).CacheStore()

	value, ok, err := cache.Get(context.Background(), "filter_set", "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestCacheStore_ReserveThenSet(t *testing.T) {
	cache := setupTestStore(t).CacheStore()
	ctx := context.Background()

	prior, existed, err := cache.Reserve(ctx, "filter_set", "abc")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Nil(t, prior)

	value, ok, err := cache.Get(ctx, "filter_set", "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)

	prior, existed, err = cache.Reserve(ctx, "filter_set", "abc")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Empty(t, prior)

	require.NoError(t, cache.Set(ctx, "filter_set", "abc", []byte(`{"article_ids":[1]}`)))

	prior, existed, err = cache.Reserve(ctx, "filter_set", "abc")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, `{"article_ids":[1]}`, string(prior))
}

func TestCacheStore_NamespacesAreIndependent(t *testing.T) {
	cache := setupTestStore(t).CacheStore()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "filter_set", "k", []byte("a")))

	_, ok, err := cache.Get(ctx, "clustering", "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheStore_Delete(t *testing.T) {
	cache := setupTestStore(t).CacheStore()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "ns", "k", []byte("v")))
	require.NoError(t, cache.Delete(ctx, "ns", "k"))
	require.NoError(t, cache.Delete(ctx, "ns", "k"))

	_, ok, err := cache.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheStore_ConcurrentReserve(t *testing.T) {
	cache := setupTestStore(t).CacheStore()
	ctx := context.Background()

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, existed, err := cache.Reserve(ctx, "ns", "contended")
			if !assert.NoError(t, err) {
				return
			}
			if !existed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
