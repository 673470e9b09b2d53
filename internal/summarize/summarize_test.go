package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// mockEmbedder returns fixed vectors per term.
type mockEmbedder struct {
	vectors map[string][]float32
	dims    int
	calls   int
	err     error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return m.vectors[text], m.err
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectors[t]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

type mockExtractor struct {
	entities map[string][]string
	short    bool
}

func (m *mockExtractor) Extract(_ context.Context, texts []string) ([][]string, error) {
	if m.short {
		return make([][]string, len(texts)-1), nil
	}
	out := make([][]string, len(texts))
	for i, t := range texts {
		out[i] = m.entities[t]
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func seedStore(t *testing.T) *memory.ArticleStore {
	t.Helper()
	store := memory.NewArticleStore()
	require.NoError(t, store.SaveArticles(context.Background(), []domain.ArticleRecord{
		{Article: domain.Article{ArticleID: 1, Title: "one"}, Embedding: []float32{1, 0}, MeSHTerms: []string{"Alpha", "Beta"}},
		{Article: domain.Article{ArticleID: 2, Title: "two"}, Embedding: []float32{1, 0}, MeSHTerms: []string{"Alpha", "Beta", "Gamma"}},
		{Article: domain.Article{ArticleID: 3, Title: "three"}, Embedding: []float32{0, 1}, MeSHTerms: []string{"Delta"}},
		{Article: domain.Article{ArticleID: 4, Title: "four"}, Embedding: []float32{0, 1}, MeSHTerms: []string{"Alpha"}},
	}))
	return store
}

func sampleClustering() *domain.ClusteringResult {
	return &domain.ClusteringResult{
		ArticleIDs: []int64{3, 1, 2, 4},
		Labels:     []*int{intPtr(1), intPtr(0), intPtr(0), nil},
		Coords:     make([]domain.Coord, 4),
	}
}

func termVectors() map[string][]float32 {
	return map[string][]float32{
		"Alpha": {0, 1},
		"Beta":  {1, 0},
	}
}

func TestGroups_MeSHTermsRankedByCentroidDistance(t *testing.T) {
	emb := &mockEmbedder{vectors: termVectors()}
	s := New(seedStore(t), emb, nil)

	p := domain.NewArticleGroupParams(domain.NewClusteringParams(domain.FilterSetParams{}))
	res, err := s.Groups(context.Background(), sampleClustering(), p)
	require.NoError(t, err)

	require.Len(t, res.Groups, 2)
	first := res.Groups[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, []int64{3}, first.ArticleIDs)
	assert.Empty(t, first.TopTerms)

	second := res.Groups[1]
	assert.Equal(t, 0, second.ID)
	assert.Equal(t, 2, second.NumArticles)
	assert.Equal(t, []int64{1, 2}, second.ArticleIDs)
	assert.Equal(t, []string{"Beta", "Alpha"}, second.TopTerms)

	require.NotNil(t, res.PlotData)
	assert.Equal(t, []string{"0", "1"}, res.PlotData.X)
}

func TestGroups_TruncatesToNumTerms(t *testing.T) {
	s := New(seedStore(t), &mockEmbedder{vectors: termVectors()}, nil)

	p := domain.ArticleGroupParams{NumTerms: 1, SummaryTerms: domain.SummaryMeSHTerms}
	res, err := s.Groups(context.Background(), sampleClustering(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, res.Groups[1].TopTerms)
}

func TestGroups_ZeroTermsSkipsEmbedding(t *testing.T) {
	emb := &mockEmbedder{vectors: termVectors()}
	s := New(seedStore(t), emb, nil)

	p := domain.ArticleGroupParams{NumTerms: 0, SummaryTerms: domain.SummaryMeSHTerms}
	res, err := s.Groups(context.Background(), sampleClustering(), p)
	require.NoError(t, err)

	for _, g := range res.Groups {
		assert.NotEmpty(t, g.ArticleIDs)
		assert.Empty(t, g.TopTerms)
	}
	assert.Zero(t, emb.calls)
}

func TestGroups_TiesKeepFirstOccurrence(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"Alpha": {1, 0},
		"Beta":  {1, 0},
	}}
	s := New(seedStore(t), emb, nil)

	p := domain.ArticleGroupParams{NumTerms: 5, SummaryTerms: domain.SummaryMeSHTerms}
	res, err := s.Groups(context.Background(), sampleClustering(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, res.Groups[1].TopTerms)
}

func TestGroups_NamedEntities(t *testing.T) {
	store := seedStore(t)
	ext := &mockExtractor{entities: map[string][]string{
		"one": {"Aspirin", "ASPIRIN ", "Boston"},
		"two": {"aspirin"},
	}}
	emb := &mockEmbedder{vectors: map[string][]float32{"aspirin": {1, 0}}}
	s := New(store, emb, ext)

	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryNamedEntities}
	res, err := s.Groups(context.Background(), sampleClustering(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"aspirin"}, res.Groups[1].TopTerms)
}

func TestGroups_NamedEntitiesWithoutExtractor(t *testing.T) {
	s := New(seedStore(t), &mockEmbedder{}, nil)

	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryNamedEntities}
	_, err := s.Groups(context.Background(), sampleClustering(), p)
	assert.Error(t, err)
}

func TestGroups_EmbedderError(t *testing.T) {
	boom := errors.New("boom")
	s := New(seedStore(t), &mockEmbedder{err: boom}, nil)

	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryMeSHTerms}
	_, err := s.Groups(context.Background(), sampleClustering(), p)
	assert.ErrorIs(t, err, boom)
}

func TestGroups_TermDimensionsMustMatchArticles(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"Alpha": {0, 1, 0},
		"Beta":  {1, 0, 0},
	}}
	s := New(seedStore(t), emb, nil)

	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryMeSHTerms}
	var err error
	assert.NotPanics(t, func() {
		_, err = s.Groups(context.Background(), sampleClustering(), p)
	})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "3 dimensions, articles have 2")
}

func TestGroups_ModelDimensionsCheckedBeforeEmbedding(t *testing.T) {
	emb := &mockEmbedder{vectors: termVectors(), dims: 768}
	s := New(seedStore(t), emb, nil)

	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryMeSHTerms}
	_, err := s.Groups(context.Background(), sampleClustering(), p)

	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "model mock has 768 dimensions, articles have 2")
	assert.Zero(t, emb.calls)
}

func TestGroups_ExtractorReturnsTooFewResults(t *testing.T) {
	ext := &mockExtractor{short: true}
	s := New(seedStore(t), &mockEmbedder{}, ext)

	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryNamedEntities}
	var err error
	assert.NotPanics(t, func() {
		_, err = s.Groups(context.Background(), sampleClustering(), p)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 3 results for 4 texts")
}

func TestGroups_BlankResults(t *testing.T) {
	s := New(seedStore(t), &mockEmbedder{}, nil)
	p := domain.ArticleGroupParams{NumTerms: 3, SummaryTerms: domain.SummaryMeSHTerms}

	t.Run("no articles", func(t *testing.T) {
		res, err := s.Groups(context.Background(), domain.BlankClusteringResult(), p)
		require.NoError(t, err)
		assert.Equal(t, domain.BlankArticleGroupResult(), res)
	})

	t.Run("all outliers", func(t *testing.T) {
		c := &domain.ClusteringResult{
			ArticleIDs: []int64{1, 2},
			Labels:     []*int{nil, nil},
			Coords:     make([]domain.Coord, 2),
		}
		res, err := s.Groups(context.Background(), c, p)
		require.NoError(t, err)
		require.Len(t, res.Groups, 1)
		assert.Equal(t, 0, res.Groups[0].NumArticles)
	})
}

func TestCentroidOf(t *testing.T) {
	c := centroidOf([]int64{1, 2, 3}, map[int64][]float32{1: {0, 2}, 2: {2, 0}})
	assert.Equal(t, []float64{1, 1}, c)
	assert.Nil(t, centroidOf([]int64{9}, nil))
}
