package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// CreateFunc builds the result for a set of params.
type CreateFunc func(ctx context.Context, params domain.Params) (domain.Result, error)

// Entry describes how one resource kind is stored and created.
type Entry struct {
	// Namespace is the cache namespace holding results of this kind.
	Namespace string

	// Create builds a result. Dependencies are read from the cache.
	Create CreateFunc
}

// Registry maps resource kinds to their storage namespace and creator.
type Registry struct {
	entries map[domain.ResourceKind]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ResourceKind]Entry)}
}

// Register adds or replaces the entry for kind.
func (r *Registry) Register(kind domain.ResourceKind, entry Entry) {
	r.entries[kind] = entry
}

// Lookup returns the entry for kind.
// Returns domain.ErrUnsupportedResource when nothing is registered.
func (r *Registry) Lookup(kind domain.ResourceKind) (Entry, error) {
	entry, ok := r.entries[kind]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedResource, kind)
	}
	return entry, nil
}

// Namespaces used by the built-in resource kinds.
const (
	NamespaceFilterSets    = "filter_sets"
	NamespaceClusterings   = "clusterings"
	NamespaceArticleGroups = "article_groups"
)

// NewDefaultRegistry registers the filter set, clustering and article
// group creators.
func NewDefaultRegistry(c *Creators) *Registry {
	r := NewRegistry()
	r.Register(domain.KindFilterSet, Entry{Namespace: NamespaceFilterSets, Create: c.FilterSet})
	r.Register(domain.KindClustering, Entry{Namespace: NamespaceClusterings, Create: c.Clustering})
	r.Register(domain.KindArticleGroup, Entry{Namespace: NamespaceArticleGroups, Create: c.ArticleGroup})
	return r
}
