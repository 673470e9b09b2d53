package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int              { return 1 }
func (c *countingEmbedder) ModelName() string            { return "counting" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error                 { return nil }

func TestWrap_DisabledReturnsInner(t *testing.T) {
	inner := &countingEmbedder{}
	assert.Same(t, inner, Wrap(inner, Config{}))
}

func TestEmbedBatch_PassesThrough(t *testing.T) {
	inner := &countingEmbedder{}
	svc := New(inner, Config{RequestsPerSecond: 100, Burst: 5})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
}

func TestEmbedBatch_EmptySkipsProvider(t *testing.T) {
	inner := &countingEmbedder{}
	svc := New(inner, Config{RequestsPerSecond: 1})

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Zero(t, inner.calls)
}

func TestEmbed_WaitHonoursContext(t *testing.T) {
	inner := &countingEmbedder{}
	svc := New(inner, Config{RequestsPerSecond: 0.01, Burst: 1})

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Embed(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
