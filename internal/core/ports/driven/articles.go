package driven

import (
	"context"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// ArticleStore reads the literature corpus.
type ArticleStore interface {
	// FilterArticles returns ids of non-temporary articles matching the
	// normalised full-text query, ordered by id. An empty query matches
	// every non-temporary article. A nil limit means no limit.
	FilterArticles(ctx context.Context, query string, limit *int) ([]int64, error)

	// GetArticles returns the known articles among ids, in the order given.
	GetArticles(ctx context.Context, ids []int64) ([]domain.Article, error)

	// GetEmbeddings returns document embeddings keyed by article id.
	// Articles without an embedding are absent from the map.
	GetEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error)

	// GetMeSHTerms returns the MeSH term names of each article.
	GetMeSHTerms(ctx context.Context, ids []int64) (map[int64][]string, error)
}

// ArticleLoader writes articles into a store.
type ArticleLoader interface {
	// SaveArticles upserts records by article id.
	SaveArticles(ctx context.Context, records []domain.ArticleRecord) error
}
