package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBlankClusteringResult(t *testing.T) {
	r := BlankClusteringResult()

	assert.Empty(t, r.ArticleIDs)
	assert.Empty(t, r.Labels)
	assert.Empty(t, r.Coords)
	assert.Zero(t, r.NumClusters)
	assert.Nil(t, r.Metrics.DBCV)
	assert.Nil(t, r.Metrics.SilhouetteCoefficient)
	require.NoError(t, r.Validate())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"article_ids":[]`)
	assert.Contains(t, string(data), `"dbcv":null`)
}

func TestNewClusteringResult_RejectsMismatchedArrays(t *testing.T) {
	_, err := NewClusteringResult(ClusteringResult{
		ArticleIDs: []int64{1, 2},
		Labels:     []*int{intPtr(0)},
		Coords:     []Coord{{0, 0}, {1, 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewClusteringResult(ClusteringResult{
		LabelInfo: ClusterLabelInfo{
			NPerCluster:            []int{1, 2},
			ClusterCenterCoords:    []Coord{{0, 0}, {1, 1}},
			ClusterValidityIndices: []float64{0.5},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewClusteringResult_AttachesPlots(t *testing.T) {
	r, err := NewClusteringResult(ClusteringResult{
		ArticleIDs:  []int64{10, 11, 12},
		Labels:      []*int{intPtr(0), nil, intPtr(1)},
		Coords:      []Coord{{1, 2}, {3, 4}, {5, 6}},
		NumClusters: 2,
		LabelInfo: ClusterLabelInfo{
			NPerCluster:         []int{1, 1, 1},
			ClusterCenterCoords: []Coord{{3, 4}, {1, 2}, {5, 6}},
			OutlierBucket:       true,
		},
	})
	require.NoError(t, err)

	require.NotNil(t, r.PlotData)
	assert.Equal(t, []float64{1, 5}, r.PlotData.X)
	assert.Equal(t, []int64{10, 12}, r.PlotData.Extra["article_ids"])
	assert.Equal(t, []string{ClusterPalette[0], ClusterPalette[1]}, r.PlotData.Marker["color"])

	require.NotNil(t, r.LabelInfo.PlotData)
	assert.Equal(t, []float64{3, 1, 5}, r.LabelInfo.PlotData.X)
}

func TestNewResult(t *testing.T) {
	for _, k := range ResourceKinds {
		r, err := NewResult(k)
		require.NoError(t, err)
		assert.Equal(t, k, r.Kind())
	}
	_, err := NewResult("nope")
	assert.ErrorIs(t, err, ErrUnsupportedResource)
}

func TestBlankArticleGroupResult(t *testing.T) {
	r := BlankArticleGroupResult()

	require.Len(t, r.Groups, 1)
	assert.Equal(t, 0, r.Groups[0].ID)
	assert.Empty(t, r.Groups[0].ArticleIDs)
	assert.Empty(t, r.Groups[0].TopTerms)
	require.NotNil(t, r.PlotData)
	assert.Equal(t, []string{"0"}, r.PlotData.X)
	assert.Empty(t, r.PlotData.Y)
}

func TestTermHeatmap(t *testing.T) {
	h := TermHeatmap([]ArticleGroup{
		{ID: 2, NumArticles: 1, ArticleIDs: []int64{1}, TopTerms: []string{"b", "a"}},
		{ID: 0, NumArticles: 1, ArticleIDs: []int64{2}, TopTerms: []string{"c", "a"}},
	})

	assert.Equal(t, "heatmap", h.Type)
	assert.Equal(t, []string{"0", "2"}, h.X)
	assert.Equal(t, []string{"a", "b", "c"}, h.Y)
	require.Len(t, h.Z, 2)

	present := func(row []*float64) []bool {
		out := make([]bool, len(row))
		for i, v := range row {
			out[i] = v != nil && *v == 1
		}
		return out
	}
	assert.Equal(t, []bool{true, false, true}, present(h.Z[0]))
	assert.Equal(t, []bool{true, true, false}, present(h.Z[1]))
}

func TestArticleGroupResult_Validate(t *testing.T) {
	_, err := NewArticleGroupResult([]ArticleGroup{{ID: 0, NumArticles: 2, ArticleIDs: []int64{1}}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
