package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func entry(t *testing.T, cache *memory.CacheStore, p domain.Params) ([]byte, bool) {
	t.Helper()
	v, ok, err := cache.Get(context.Background(), NamespaceFilterSets, p.Hash())
	require.NoError(t, err)
	return v, ok
}

func TestReserve_FreshKeyWritesSentinel(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()

	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)
	require.NotNil(t, res)

	v, ok := entry(t, cache, p)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestReserve_InProgress(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	_, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	_, err = Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	assert.ErrorIs(t, err, domain.ErrResourceCreationInProgress)
}

func TestReserve_Exists(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	require.NoError(t, cache.Set(context.Background(), NamespaceFilterSets, p.Hash(), []byte(`{}`)))

	_, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	assert.ErrorIs(t, err, domain.ErrResourceExists)
}

func TestReserve_ForceOverwrites(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	require.NoError(t, cache.Set(context.Background(), NamespaceFilterSets, p.Hash(), []byte(`{}`)))

	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, true)
	require.NoError(t, err)
	require.NotNil(t, res)

	v, ok := entry(t, cache, p)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestReserve_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	cache := &failingCache{CacheStore: memory.NewCacheStore(), reserveErr: boom}

	_, err := Reserve(context.Background(), cache, NamespaceFilterSets, sampleFilterSet(), false)
	assert.ErrorIs(t, err, boom)
}

func TestReservation_Run_StoresValue(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	err = res.Run(context.Background(), func(context.Context) ([]byte, error) {
		return []byte(`{"article_ids":[1]}`), nil
	})
	require.NoError(t, err)

	v, ok := entry(t, cache, p)
	assert.True(t, ok)
	assert.Equal(t, `{"article_ids":[1]}`, string(v))
}

func TestReservation_Run_ReleasesOnError(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = res.Run(context.Background(), func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := entry(t, cache, p)
	assert.False(t, ok)

	_, err = Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	assert.NoError(t, err)
}

func TestReservation_Run_ReleasesOnPanic(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = res.Run(context.Background(), func(context.Context) ([]byte, error) {
			panic("kaboom")
		})
	})

	_, ok := entry(t, cache, p)
	assert.False(t, ok)
}

func TestReservation_Run_ReleasesOnCancel(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	ctx, cancel := context.WithCancel(context.Background())
	res, err := Reserve(ctx, cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	err = res.Run(ctx, func(context.Context) ([]byte, error) {
		cancel()
		return []byte(`{}`), nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := entry(t, cache, p)
	assert.False(t, ok)
}

func TestReservation_Run_RejectsEmptyValue(t *testing.T) {
	cache := memory.NewCacheStore()
	p := sampleFilterSet()
	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	err = res.Run(context.Background(), func(context.Context) ([]byte, error) {
		return nil, nil
	})
	assert.Error(t, err)

	_, ok := entry(t, cache, p)
	assert.False(t, ok)
}

func TestReservation_Run_ReleasesWhenStoreFails(t *testing.T) {
	boom := errors.New("disk full")
	cache := &failingCache{CacheStore: memory.NewCacheStore(), setErr: boom}
	p := sampleFilterSet()
	res, err := Reserve(context.Background(), cache, NamespaceFilterSets, p, false)
	require.NoError(t, err)

	err = res.Run(context.Background(), func(context.Context) ([]byte, error) {
		return []byte(`{}`), nil
	})
	assert.ErrorIs(t, err, boom)

	_, ok := entry(t, cache.CacheStore, p)
	assert.False(t, ok)
}
