package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func seedArticles(t *testing.T) *ArticleStore {
	t.Helper()
	store := NewArticleStore()
	err := store.SaveArticles(context.Background(), []domain.ArticleRecord{
		{
			Article:   domain.Article{ArticleID: 1, PMID: 101, Title: "Breast cancer screening", Abstract: "Mammography outcomes."},
			Embedding: []float32{1, 0},
			MeSHTerms: []string{"Breast Neoplasms", "Mammography"},
		},
		{
			Article:   domain.Article{ArticleID: 2, PMID: 102, Title: "Lung cancer", Abstract: "Smoking and tumour growth."},
			Embedding: []float32{0, 1},
			MeSHTerms: []string{"Lung Neoplasms"},
		},
		{
			Article: domain.Article{ArticleID: 3, PMID: 103, Title: "Heart failure", Abstract: "Cardiac outcomes."},
		},
		{
			Article:   domain.Article{ArticleID: 4, Title: "Cancer draft", Temporary: true},
			Embedding: []float32{1, 1},
		},
	})
	require.NoError(t, err)
	return store
}

func TestArticleStore_FilterArticles(t *testing.T) {
	store := seedArticles(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"empty query matches all permanent", "", []int64{1, 2, 3}},
		{"single word", "cancer", []int64{1, 2}},
		{"implicit and", "cancer smoking", []int64{2}},
		{"or", "smoking or cardiac", []int64{2, 3}},
		{"negation", "cancer -lung", []int64{1}},
		{"phrase", `"breast cancer"`, []int64{1}},
		{"no match", "diabetes", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := store.FilterArticles(ctx, tt.query, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestArticleStore_FilterArticles_Limit(t *testing.T) {
	store := seedArticles(t)
	limit := 1

	ids, err := store.FilterArticles(context.Background(), "cancer", &limit)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestArticleStore_GetArticles_SkipsUnknown(t *testing.T) {
	store := seedArticles(t)

	articles, err := store.GetArticles(context.Background(), []int64{2, 99, 1})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, int64(2), articles[0].ArticleID)
	assert.Equal(t, int64(1), articles[1].ArticleID)
}

func TestArticleStore_GetEmbeddings_OmitsMissing(t *testing.T) {
	store := seedArticles(t)

	emb, err := store.GetEmbeddings(context.Background(), []int64{1, 3, 4})
	require.NoError(t, err)
	assert.Len(t, emb, 2)
	assert.Equal(t, []float32{1, 0}, emb[1])
	assert.Equal(t, []float32{1, 1}, emb[4])
}

func TestArticleStore_GetMeSHTerms(t *testing.T) {
	store := seedArticles(t)

	terms, err := store.GetMeSHTerms(context.Background(), []int64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Breast Neoplasms", "Mammography"}, terms[1])
	assert.Empty(t, terms[3])
}

func TestArticleStore_SaveArticles_RequiresID(t *testing.T) {
	store := NewArticleStore()

	err := store.SaveArticles(context.Background(), []domain.ArticleRecord{{Article: domain.Article{Title: "x"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
