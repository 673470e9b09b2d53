package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// Ensure ResourceService implements the interfaces.
var (
	_ driving.ResourceService = (*ResourceService)(nil)
	_ DependencyFinder        = (*ResourceService)(nil)
)

// WaitOptions controls polling for in-progress dependencies.
type WaitOptions struct {
	// Interval between checks. Defaults to one second.
	Interval time.Duration

	// MaxAttempts bounds the number of checks. Zero waits indefinitely.
	MaxAttempts int
}

// ResourceService implements the cached resource protocol on a CacheStore.
type ResourceService struct {
	cache    driven.CacheStore
	articles driven.ArticleStore
	registry *Registry
	wait     WaitOptions
}

// NewResourceService creates a resource service with the default registry.
func NewResourceService(
	cache driven.CacheStore,
	articles driven.ArticleStore,
	embedder driven.EmbeddingService,
	extractor driven.EntityExtractor,
	wait WaitOptions,
) *ResourceService {
	if wait.Interval <= 0 {
		wait.Interval = time.Second
	}
	s := &ResourceService{cache: cache, articles: articles, wait: wait}
	s.registry = NewDefaultRegistry(NewCreators(articles, s, embedder, extractor))
	return s
}

// NewResourceServiceWithRegistry creates a resource service with a custom registry.
func NewResourceServiceWithRegistry(cache driven.CacheStore, registry *Registry, wait WaitOptions) *ResourceService {
	if wait.Interval <= 0 {
		wait.Interval = time.Second
	}
	return &ResourceService{cache: cache, registry: registry, wait: wait}
}

// Find returns the stored result for params.
func (s *ResourceService) Find(ctx context.Context, params domain.Params) (domain.Result, error) {
	return s.FindHash(ctx, params.Kind(), params.Hash())
}

// FindHash returns the stored result addressed by kind and hash.
func (s *ResourceService) FindHash(ctx context.Context, kind domain.ResourceKind, hash string) (domain.Result, error) {
	entry, err := s.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}

	value, ok, err := s.cache.Get(ctx, entry.Namespace, hash)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, hash, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s with hash %s", domain.ErrResourceDoesNotExist, kind, hash)
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: %s with hash %s", domain.ErrResourceCreationInProgress, kind, hash)
	}

	result, err := domain.NewResult(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(value, result); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, hash, err)
	}
	return result, nil
}

// Make creates the resource for params. It is a no-op when the resource
// already exists or another creator holds it, unless force is set.
func (s *ResourceService) Make(ctx context.Context, params domain.Params, force bool) error {
	if err := params.Validate(); err != nil {
		return err
	}
	entry, err := s.registry.Lookup(params.Kind())
	if err != nil {
		return err
	}

	res, err := Reserve(ctx, s.cache, entry.Namespace, params, force)
	if isSkippable(err) {
		logger.Info("Stopping creation: %v", err)
		return nil
	}
	if err != nil {
		return err
	}

	return res.Run(ctx, func(ctx context.Context) ([]byte, error) {
		result, err := entry.Create(ctx, params)
		if err != nil {
			return nil, err
		}
		if err := result.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
}

// Evict deletes the cached entry, whether finished or in progress.
func (s *ResourceService) Evict(ctx context.Context, kind domain.ResourceKind, hash string) error {
	entry, err := s.registry.Lookup(kind)
	if err != nil {
		return err
	}
	if _, ok, err := s.cache.Get(ctx, entry.Namespace, hash); err != nil {
		return fmt.Errorf("get %s %s: %w", kind, hash, err)
	} else if !ok {
		return fmt.Errorf("%w: %s with hash %s", domain.ErrResourceDoesNotExist, kind, hash)
	}
	if err := s.cache.Delete(ctx, entry.Namespace, hash); err != nil {
		return fmt.Errorf("evict %s %s: %w", kind, hash, err)
	}
	logger.Info("Evicted %s %s", kind, hash)
	return nil
}

// FilterSetArticles returns the articles of a stored filter set.
func (s *ResourceService) FilterSetArticles(ctx context.Context, hash string) ([]domain.Article, error) {
	result, err := s.FindHash(ctx, domain.KindFilterSet, hash)
	if err != nil {
		return nil, err
	}
	if s.articles == nil {
		return nil, fmt.Errorf("filter set articles: no article store configured")
	}
	return s.articles.GetArticles(ctx, result.(*domain.FilterSetResult).ArticleIDs)
}

// Await polls until the resource for params is no longer in progress.
// An absent resource fails immediately.
func (s *ResourceService) Await(ctx context.Context, params domain.Params) (domain.Result, error) {
	for attempt := 1; ; attempt++ {
		result, err := s.Find(ctx, params)
		if !errors.Is(err, domain.ErrResourceCreationInProgress) {
			if err == nil {
				logger.Debug("Found %s resource", params.Kind())
			}
			return result, err
		}
		if s.wait.MaxAttempts > 0 && attempt >= s.wait.MaxAttempts {
			return nil, fmt.Errorf("%w: %s after %d attempts", domain.ErrDependencyTimeout, params.Kind(), attempt)
		}

		logger.Debug("Waiting for %s resource %s", params.Kind(), params.Hash())
		timer := time.NewTimer(s.wait.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
