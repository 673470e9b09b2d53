// Package ratelimit throttles calls to an embedding provider.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config holds the token bucket settings.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or less disables throttling.
	RequestsPerSecond float64

	// Burst is the bucket size. Values below 1 are treated as 1.
	Burst int
}

// EmbeddingService wraps another EmbeddingService and takes one token from
// a shared bucket before every Embed or EmbedBatch call.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap returns next unchanged when throttling is disabled.
func Wrap(next driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a throttled EmbeddingService.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for embedding rate limit: %w", err)
	}
	return s.next.Embed(ctx, text)
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for embedding rate limit: %w", err)
	}
	return s.next.EmbedBatch(ctx, texts)
}

func (s *EmbeddingService) Dimensions() int                { return s.next.Dimensions() }
func (s *EmbeddingService) ModelName() string              { return s.next.ModelName() }
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }
func (s *EmbeddingService) Close() error                   { return s.next.Close() }
