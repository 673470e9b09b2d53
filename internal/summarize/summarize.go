// Package summarize describes each cluster of a clustering with the
// recurring terms closest to the cluster's embedding centroid.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/litmapper/internal/clustering"
	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// ErrDimensionMismatch is returned when term embeddings and article
// embeddings have different lengths, usually because the configured model
// differs from the one that embedded the corpus.
var ErrDimensionMismatch = errors.New("embedding dimensions do not match")

// Summarizer builds article groups from a clustering.
type Summarizer struct {
	articles  driven.ArticleStore
	embedder  driven.EmbeddingService
	extractor driven.EntityExtractor
}

// New creates a summarizer. embedder and extractor may be nil; a request
// that needs a missing one fails.
func New(articles driven.ArticleStore, embedder driven.EmbeddingService, extractor driven.EntityExtractor) *Summarizer {
	return &Summarizer{articles: articles, embedder: embedder, extractor: extractor}
}

// Groups returns one group per cluster label, in order of first
// appearance. Outliers belong to no group.
func (s *Summarizer) Groups(ctx context.Context, c *domain.ClusteringResult, p domain.ArticleGroupParams) (*domain.ArticleGroupResult, error) {
	if len(c.ArticleIDs) == 0 {
		return domain.BlankArticleGroupResult(), nil
	}

	embeddings, err := s.articles.GetEmbeddings(ctx, c.ArticleIDs)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	terms, err := s.candidateTerms(ctx, c.ArticleIDs, p.SummaryTerms)
	if err != nil {
		return nil, err
	}

	var (
		order   []int
		members = map[int][]int64{}
	)
	for i, label := range c.Labels {
		if label == nil {
			continue
		}
		if _, ok := members[*label]; !ok {
			order = append(order, *label)
		}
		members[*label] = append(members[*label], c.ArticleIDs[i])
	}

	groups := make([]domain.ArticleGroup, 0, len(order))
	for _, label := range order {
		ids := members[label]
		top, err := s.topTerms(ctx, ids, terms, embeddings, p.NumTerms)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", label, err)
		}
		groups = append(groups, domain.ArticleGroup{
			ID:          label,
			NumArticles: len(ids),
			ArticleIDs:  ids,
			TopTerms:    top,
		})
	}
	logger.Info("Summarised %d article groups", len(groups))

	if len(groups) == 0 {
		return domain.BlankArticleGroupResult(), nil
	}
	return domain.NewArticleGroupResult(groups)
}

// candidateTerms returns the terms attached to each article.
func (s *Summarizer) candidateTerms(ctx context.Context, ids []int64, source domain.SummaryTermSource) (map[int64][]string, error) {
	switch source {
	case domain.SummaryMeSHTerms:
		terms, err := s.articles.GetMeSHTerms(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get mesh terms: %w", err)
		}
		return terms, nil
	case domain.SummaryNamedEntities:
		return s.entityTerms(ctx, ids)
	default:
		return nil, fmt.Errorf("%w: unsupported summary terms %q", domain.ErrInvalidInput, source)
	}
}

// entityTerms extracts named entities, lower-cased and de-duplicated per article.
func (s *Summarizer) entityTerms(ctx context.Context, ids []int64) (map[int64][]string, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("named entities: no entity extractor configured")
	}
	articles, err := s.articles.GetArticles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get articles: %w", err)
	}
	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Text()
	}
	entities, err := s.extractor.Extract(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}
	if len(entities) != len(texts) {
		return nil, fmt.Errorf("extract entities: got %d results for %d texts", len(entities), len(texts))
	}

	out := make(map[int64][]string, len(articles))
	for i, a := range articles {
		seen := map[string]bool{}
		for _, e := range entities[i] {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			out[a.ArticleID] = append(out[a.ArticleID], e)
		}
	}
	return out, nil
}

// topTerms ranks the recurring terms of a group by cosine distance to the
// mean embedding of its articles. Ties keep first-occurrence order.
func (s *Summarizer) topTerms(
	ctx context.Context,
	ids []int64,
	terms map[int64][]string,
	embeddings map[int64][]float32,
	numTerms int,
) ([]string, error) {
	var (
		order  []string
		counts = map[string]int{}
	)
	for _, id := range ids {
		for _, t := range terms[id] {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	var candidates []string
	for _, t := range order {
		if counts[t] > 1 {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 || numTerms == 0 {
		return []string{}, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("rank terms: no embedding service configured")
	}

	centroid := centroidOf(ids, embeddings)
	if centroid == nil {
		return []string{}, nil
	}
	if d := s.embedder.Dimensions(); d > 0 && d != len(centroid) {
		return nil, fmt.Errorf("%w: model %s has %d dimensions, articles have %d",
			ErrDimensionMismatch, s.embedder.ModelName(), d, len(centroid))
	}
	vectors, err := s.embedder.EmbedBatch(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("embed terms: %w", err)
	}
	if len(vectors) != len(candidates) {
		return nil, fmt.Errorf("embed terms: got %d vectors for %d terms", len(vectors), len(candidates))
	}

	distance := make(map[string]float64, len(candidates))
	for i, t := range candidates {
		if len(vectors[i]) != len(centroid) {
			return nil, fmt.Errorf("%w: term %q has %d dimensions, articles have %d",
				ErrDimensionMismatch, t, len(vectors[i]), len(centroid))
		}
		distance[t] = clustering.CosineDistance(toFloat64(vectors[i]), centroid)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return distance[candidates[i]] < distance[candidates[j]]
	})
	if numTerms < len(candidates) {
		candidates = candidates[:numTerms]
	}
	return candidates, nil
}

// centroidOf averages the embeddings of ids that have one.
func centroidOf(ids []int64, embeddings map[int64][]float32) []float64 {
	var (
		sum []float64
		n   int
	)
	for _, id := range ids {
		v, ok := embeddings[id]
		if !ok {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			continue
		}
		floats.Add(sum, toFloat64(v))
		n++
	}
	if n == 0 {
		return nil
	}
	floats.Scale(1/float64(n), sum)
	return sum
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
