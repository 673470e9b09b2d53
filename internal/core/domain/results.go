package domain

import "fmt"

// Result is the stored outcome of creating a resource.
type Result interface {
	Kind() ResourceKind
	Validate() error
}

// NewResult returns an empty result value of the given kind for decoding.
func NewResult(kind ResourceKind) (Result, error) {
	switch kind {
	case KindFilterSet:
		return &FilterSetResult{}, nil
	case KindClustering:
		return &ClusteringResult{}, nil
	case KindArticleGroup:
		return &ArticleGroupResult{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedResource, kind)
	}
}

// FilterSetResult lists the article ids matched by a filter set.
type FilterSetResult struct {
	ArticleIDs []int64 `json:"article_ids"`
}

func (*FilterSetResult) Kind() ResourceKind { return KindFilterSet }

func (r *FilterSetResult) Validate() error { return nil }

// Coord is a point in the two-dimensional reduced space.
type Coord [2]float64

// ClusteringMetrics holds overall quality scores. A nil score is undefined
// for the labelling or was skipped.
type ClusteringMetrics struct {
	DBCV                  *float64 `json:"dbcv"`
	SilhouetteCoefficient *float64 `json:"silhoutte_coefficient"`
	DaviesBouldinIndex    *float64 `json:"davies_bouldin_index"`
	DunnIndex             *float64 `json:"dunn_index"`
}

// ClusterLabelInfo holds per-cluster arrays indexed by sorted raw label.
// When OutlierBucket is set, index 0 describes the unclustered points.
type ClusterLabelInfo struct {
	NPerCluster            []int         `json:"n_per_cluster"`
	ClusterValidityIndices []float64     `json:"cluster_validity_indices"`
	ClusterCenterCoords    []Coord       `json:"cluster_center_coords"`
	OutlierBucket          bool          `json:"outlier_bucket"`
	PlotData               *ScatterTrace `json:"plotly_data"`
}

// Validate checks that the per-cluster arrays line up. Validity indices
// may be empty when the density validity score was not computed.
func (l *ClusterLabelInfo) Validate() error {
	n := len(l.NPerCluster)
	if len(l.ClusterCenterCoords) != n {
		return fmt.Errorf("%w: must have same number of clusters (%d) and coords (%d)",
			ErrInvalidInput, n, len(l.ClusterCenterCoords))
	}
	if len(l.ClusterValidityIndices) != 0 && len(l.ClusterValidityIndices) != n {
		return fmt.Errorf("%w: must have same number of clusters (%d) and index values (%d)",
			ErrInvalidInput, n, len(l.ClusterValidityIndices))
	}
	return nil
}

// ClusteringResult holds per-article coordinates and cluster labels.
type ClusteringResult struct {
	ArticleIDs  []int64           `json:"article_ids"`
	Labels      []*int            `json:"labels"`
	Coords      []Coord           `json:"coords"`
	NumClusters int               `json:"num_clusters"`
	Metrics     ClusteringMetrics `json:"metrics"`
	LabelInfo   ClusterLabelInfo  `json:"label_info"`
	PlotData    *ScatterTrace     `json:"plotly_data"`
}

func (*ClusteringResult) Kind() ResourceKind { return KindClustering }

// Validate checks the per-article arrays and the label info.
func (r *ClusteringResult) Validate() error {
	if len(r.Labels) != len(r.ArticleIDs) || len(r.Coords) != len(r.ArticleIDs) {
		return fmt.Errorf("%w: must have same number of article IDs (%d), labels (%d), and coords (%d)",
			ErrInvalidInput, len(r.ArticleIDs), len(r.Labels), len(r.Coords))
	}
	return r.LabelInfo.Validate()
}

// NewClusteringResult validates the result and attaches its plot data.
func NewClusteringResult(r ClusteringResult) (*ClusteringResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.LabelInfo.PlotData = CentroidScatter(r.LabelInfo)
	r.PlotData = PointScatter(r.ArticleIDs, r.Labels, r.Coords)
	return &r, nil
}

// BlankClusteringResult is returned when a filter set matched nothing.
func BlankClusteringResult() *ClusteringResult {
	r, _ := NewClusteringResult(ClusteringResult{
		ArticleIDs: []int64{},
		Labels:     []*int{},
		Coords:     []Coord{},
		LabelInfo: ClusterLabelInfo{
			NPerCluster:            []int{},
			ClusterValidityIndices: []float64{},
			ClusterCenterCoords:    []Coord{},
		},
	})
	return r
}

// ArticleGroup summarises one cluster.
type ArticleGroup struct {
	ID          int      `json:"id"`
	NumArticles int      `json:"num_articles"`
	ArticleIDs  []int64  `json:"article_ids"`
	TopTerms    []string `json:"top_terms"`
}

// ArticleGroupResult holds one group per non-outlier cluster.
type ArticleGroupResult struct {
	Groups   []ArticleGroup `json:"result"`
	PlotData *HeatmapTrace  `json:"plotly_data"`
}

func (*ArticleGroupResult) Kind() ResourceKind { return KindArticleGroup }

func (r *ArticleGroupResult) Validate() error {
	for _, g := range r.Groups {
		if g.NumArticles != len(g.ArticleIDs) {
			return fmt.Errorf("%w: group %d lists %d articles but counts %d",
				ErrInvalidInput, g.ID, len(g.ArticleIDs), g.NumArticles)
		}
	}
	return nil
}

// NewArticleGroupResult attaches the term heatmap to the groups.
func NewArticleGroupResult(groups []ArticleGroup) (*ArticleGroupResult, error) {
	r := &ArticleGroupResult{Groups: groups}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.PlotData = TermHeatmap(groups)
	return r, nil
}

// BlankArticleGroupResult is returned when the clustering has no articles.
func BlankArticleGroupResult() *ArticleGroupResult {
	r, _ := NewArticleGroupResult([]ArticleGroup{{
		ID:          0,
		NumArticles: 0,
		ArticleIDs:  []int64{},
		TopTerms:    []string{},
	}})
	return r
}
