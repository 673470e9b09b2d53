package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interfaces.
var (
	_ driven.ArticleStore  = (*ArticleStore)(nil)
	_ driven.ArticleLoader = (*ArticleStore)(nil)
)

// ArticleStore is an in-memory article corpus with naive full-text matching.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[int64]domain.ArticleRecord
}

// NewArticleStore creates a new in-memory article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		articles: make(map[int64]domain.ArticleRecord),
	}
}

// SaveArticles stores or replaces articles by id.
func (s *ArticleStore) SaveArticles(_ context.Context, records []domain.ArticleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ArticleID == 0 {
			return domain.ErrInvalidInput
		}
		s.articles[r.ArticleID] = r
	}
	return nil
}

// FilterArticles returns the ids of permanent articles whose title or
// abstract matches the query, in ascending id order.
func (s *ArticleStore) FilterArticles(_ context.Context, query string, limit *int) ([]int64, error) {
	q := domain.ParseQuery(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for id, r := range s.articles {
		if r.Temporary {
			continue
		}
		if q.Empty() || q.Match(r.Text()) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit != nil && *limit >= 0 && *limit < len(ids) {
		ids = ids[:*limit]
	}
	return ids, nil
}

// GetArticles returns the known articles among ids, in the order given.
func (s *ArticleStore) GetArticles(_ context.Context, ids []int64) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.articles[id]; ok {
			out = append(out, r.Article)
		}
	}
	return out, nil
}

// GetEmbeddings returns embeddings for the ids that have one.
func (s *ArticleStore) GetEmbeddings(_ context.Context, ids []int64) (map[int64][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]float32, len(ids))
	for _, id := range ids {
		if r, ok := s.articles[id]; ok && len(r.Embedding) > 0 {
			out[id] = r.Embedding
		}
	}
	return out, nil
}

// GetMeSHTerms returns the MeSH headings of each known article.
func (s *ArticleStore) GetMeSHTerms(_ context.Context, ids []int64) (map[int64][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]string, len(ids))
	for _, id := range ids {
		if r, ok := s.articles[id]; ok {
			out[id] = append([]string(nil), r.MeSHTerms...)
		}
	}
	return out, nil
}
