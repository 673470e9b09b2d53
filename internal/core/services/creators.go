package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/clustering"
	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/logger"
	"github.com/custodia-labs/litmapper/internal/summarize"
)

// DependencyFinder waits for an upstream resource to finish.
type DependencyFinder interface {
	Await(ctx context.Context, params domain.Params) (domain.Result, error)
}

// Creators holds the handles the creation functions need.
type Creators struct {
	articles  driven.ArticleStore
	deps      DependencyFinder
	summarize *summarize.Summarizer
}

// NewCreators wires the creation functions. embedder and extractor may be
// nil when no article group requests terms from them.
func NewCreators(
	articles driven.ArticleStore,
	deps DependencyFinder,
	embedder driven.EmbeddingService,
	extractor driven.EntityExtractor,
) *Creators {
	return &Creators{
		articles:  articles,
		deps:      deps,
		summarize: summarize.New(articles, embedder, extractor),
	}
}

// FilterSet runs the full-text filter. Temporary articles are not
// included here; clustering merges them in.
func (c *Creators) FilterSet(ctx context.Context, params domain.Params) (domain.Result, error) {
	p, ok := params.(domain.FilterSetParams)
	if !ok {
		return nil, fmt.Errorf("%w: expected filter set params, got %T", domain.ErrInvalidInput, params)
	}

	query := domain.NormalizeQuery(p.Query())
	ids, err := c.articles.FilterArticles(ctx, query, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("filter articles: %w", err)
	}
	logger.Info("Filter set matched %d articles", len(ids))

	if ids == nil {
		ids = []int64{}
	}
	return &domain.FilterSetResult{ArticleIDs: ids}, nil
}

// Clustering reduces and clusters the embeddings of a filter set.
func (c *Creators) Clustering(ctx context.Context, params domain.Params) (domain.Result, error) {
	p, ok := params.(domain.ClusteringParams)
	if !ok {
		return nil, fmt.Errorf("%w: expected clustering params, got %T", domain.ErrInvalidInput, params)
	}

	dep, err := c.deps.Await(ctx, p.FilterSet)
	if err != nil {
		return nil, fmt.Errorf("filter set: %w", err)
	}
	ids := dep.(*domain.FilterSetResult).ArticleIDs

	if len(p.FilterSet.TempArticleIDs) > 0 {
		if p.FilterSet.FullTextSearchQuery == nil {
			ids = p.FilterSet.TempArticleIDs
		} else {
			ids = append(append([]int64{}, ids...), p.FilterSet.TempArticleIDs...)
		}
	}
	if len(ids) == 0 {
		return domain.BlankClusteringResult(), nil
	}

	embeddings, err := c.articles.GetEmbeddings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}

	kept := make([]int64, 0, len(ids))
	vectors := make([][]float64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		vec, ok := embeddings[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		kept = append(kept, id)
		vectors = append(vectors, toFloat64(vec))
	}
	logger.Info("Retrieved %d filtered articles to cluster", len(kept))
	if len(kept) == 0 {
		return domain.BlankClusteringResult(), nil
	}

	return clustering.Run(ctx, kept, vectors, p)
}

// ArticleGroup summarises each cluster of a clustering.
func (c *Creators) ArticleGroup(ctx context.Context, params domain.Params) (domain.Result, error) {
	p, ok := params.(domain.ArticleGroupParams)
	if !ok {
		return nil, fmt.Errorf("%w: expected article group params, got %T", domain.ErrInvalidInput, params)
	}

	dep, err := c.deps.Await(ctx, p.Clustering)
	if err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}
	return c.summarize.Groups(ctx, dep.(*domain.ClusteringResult), p)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
