package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

func seedArticles(t *testing.T) *ArticleStore {
	t.Helper()
	articles := setupTestStore(t).ArticleStore()
	err := articles.SaveArticles(context.Background(), []domain.ArticleRecord{
		{
			Article:   domain.Article{ArticleID: 1, PMID: 101, Title: "Breast cancer screening", Abstract: "Mammography outcomes.", PublicationDate: "2020-01-02"},
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
	return articles
}

func TestArticleStore_FilterArticles(t *testing.T) {
	articles := seedArticles(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"empty query matches all permanent", "", []int64{1, 2, 3}},
		{"single word", "cancer", []int64{1, 2}},
		{"case insensitive", "CANCER", []int64{1, 2}},
		{"implicit and", "cancer smoking", []int64{2}},
		{"explicit and", "cancer and smoking", []int64{2}},
		{"or", "smoking or cardiac", []int64{2, 3}},
		{"negation", "cancer -lung", []int64{1}},
		{"phrase", `"breast cancer"`, []int64{1}},
		{"phrase order matters", `"cancer breast"`, []int64{}},
		{"no match", "diabetes", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := articles.FilterArticles(ctx, tt.query, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestArticleStore_FilterArticles_Limit(t *testing.T) {
	articles := seedArticles(t)
	limit := 1

	ids, err := articles.FilterArticles(context.Background(), "cancer", &limit)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestArticleStore_SaveArticles_Upserts(t *testing.T) {
	articles := seedArticles(t)
	ctx := context.Background()

	err := articles.SaveArticles(ctx, []domain.ArticleRecord{{
		Article:   domain.Article{ArticleID: 3, PMID: 103, Title: "Heart cancer", Abstract: "Rare."},
		MeSHTerms: []string{"Heart Neoplasms"},
	}})
	require.NoError(t, err)

	ids, err := articles.FilterArticles(ctx, "cancer", nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = articles.FilterArticles(ctx, "failure", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	terms, err := articles.GetMeSHTerms(ctx, []int64{3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Heart Neoplasms"}, terms[3])
}

func TestArticleStore_SaveArticles_RequiresID(t *testing.T) {
	articles := setupTestStore(t).ArticleStore()

	err := articles.SaveArticles(context.Background(), []domain.ArticleRecord{{Article: domain.Article{Title: "x"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestArticleStore_GetArticles_KeepsOrderAndSkipsUnknown(t *testing.T) {
	articles := seedArticles(t)

	got, err := articles.GetArticles(context.Background(), []int64{2, 99, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ArticleID)
	assert.Equal(t, int64(1), got[1].ArticleID)
	assert.Equal(t, "Breast cancer screening", got[1].Title)
	assert.Equal(t, "2020-01-02", got[1].PublicationDate)
	assert.Equal(t, int64(101), got[1].PMID)
}

func TestArticleStore_GetEmbeddings(t *testing.T) {
	articles := seedArticles(t)

	got, err := articles.GetEmbeddings(context.Background(), []int64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []float32{1, 0}, got[1])
	assert.Equal(t, []float32{1, 1}, got[4])
	assert.NotContains(t, got, int64(3))
}

func TestArticleStore_GetMeSHTerms_KeepsPosition(t *testing.T) {
	articles := seedArticles(t)

	got, err := articles.GetMeSHTerms(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Breast Neoplasms", "Mammography"}, got[1])
	assert.Equal(t, []string{"Lung Neoplasms"}, got[2])
}

func TestArticleStore_LargeIDLists(t *testing.T) {
	articles := setupTestStore(t).ArticleStore()
	ctx := context.Background()

	records := make([]domain.ArticleRecord, 0, 1200)
	ids := make([]int64, 0, 1200)
	for i := int64(1); i <= 1200; i++ {
		records = append(records, domain.ArticleRecord{
			Article:   domain.Article{ArticleID: i, Title: "title"},
			Embedding: []float32{float32(i)},
		})
		ids = append(ids, i)
	}
	require.NoError(t, articles.SaveArticles(ctx, records))

	got, err := articles.GetEmbeddings(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, got, 1200)
}

func TestFTSPhrase(t *testing.T) {
	assert.Equal(t, `"breast cancer"`, ftsPhrase([]string{"breast", "cancer"}))
}
