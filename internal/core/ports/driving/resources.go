package driving

import (
	"context"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// ResourceService reads, creates and evicts cached resources.
type ResourceService interface {
	// Find returns the stored result for params.
	// Returns domain.ErrResourceDoesNotExist when nothing is stored and
	// domain.ErrResourceCreationInProgress while a creator holds the key.
	Find(ctx context.Context, params domain.Params) (domain.Result, error)

	// FindHash is Find addressed by kind and precomputed hash.
	FindHash(ctx context.Context, kind domain.ResourceKind, hash string) (domain.Result, error)

	// Make creates the resource unless it exists or is being created.
	// Dependencies must already exist or be in progress elsewhere.
	// With force the resource is rebuilt regardless of cache state.
	Make(ctx context.Context, params domain.Params, force bool) error

	// Evict deletes the cached entry for kind and hash.
	Evict(ctx context.Context, kind domain.ResourceKind, hash string) error

	// FilterSetArticles returns the articles of a stored filter set.
	FilterSetArticles(ctx context.Context, hash string) ([]domain.Article, error)
}
