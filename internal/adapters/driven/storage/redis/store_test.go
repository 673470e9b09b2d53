package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore starts an in-process Redis server for the test.
func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewStoreFromClient(client, "test:")
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store, mr
}

func TestNewStore_ConnectsByURL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewStore(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestNewStore_InvalidURL(t *testing.T) {
	_, err := NewStore(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestStore_KeysArePrefixed(t *testing.T) {
	store, _ := setupTestStore(t)
	assert.Equal(t, "test:cache:filter_set", store.key("cache", "filter_set"))
}
