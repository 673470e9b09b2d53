package clustering

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// Run projects the embeddings, clusters the projection and scores the
// result. ids and embeddings are parallel. An empty input yields the
// blank result; too few points for the parameters yields
// domain.ErrClusteringFailed.
func Run(ctx context.Context, ids []int64, embeddings [][]float64, p domain.ClusteringParams) (*domain.ClusteringResult, error) {
	if len(ids) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d ids but %d embeddings", domain.ErrInvalidInput, len(ids), len(embeddings))
	}
	if len(ids) == 0 {
		return domain.BlankClusteringResult(), nil
	}

	coords, err := Reduce(ctx, embeddings, ReduceOptions{
		NNeighbors: p.UMAPNNeighbors,
		Metric:     p.UMAPMetric,
		MinDist:    p.UMAPMinDist,
		Seed:       p.UMAPSeed,
	})
	if err != nil {
		return nil, translate(err)
	}
	logger.Info("Reduced dimensionality of %d articles", len(ids))

	points := coordsToRows(coords)
	d := pairwise(points, euclidean)
	rawLabels, err := cluster(d, p)
	if err != nil {
		return nil, translate(err)
	}

	numClusters := 0
	for _, l := range rawLabels {
		if l+1 > numClusters {
			numClusters = l + 1
		}
	}
	logger.Info("Generated %d clusters", numClusters)

	labels := make([]*int, len(rawLabels))
	for i, l := range rawLabels {
		if l >= 0 {
			v := l
			labels[i] = &v
		}
	}

	info, metrics := score(points, d, rawLabels, p)

	return domain.NewClusteringResult(domain.ClusteringResult{
		ArticleIDs:  ids,
		Labels:      labels,
		Coords:      coords,
		NumClusters: numClusters,
		Metrics:     metrics,
		LabelInfo:   info,
	})
}

// cluster labels the planar points given their distance matrix d.
func cluster(d [][]float64, p domain.ClusteringParams) ([]int, error) {
	h, err := buildHierarchy(d, p.HDBSCANMinSamples)
	if err != nil {
		return nil, err
	}
	if p.HDBSCANDoFlatClustering {
		return h.CutAt(p.HDBSCANClusterFlatteningEpsilon, p.HDBSCANMinClusterSize), nil
	}
	return h.Labels(HDBSCANOptions{
		MinClusterSize:          p.HDBSCANMinClusterSize,
		MinSamples:              p.HDBSCANMinSamples,
		ClusterSelectionEpsilon: p.HDBSCANClusterSelectionEpsilon,
	}), nil
}

func translate(err error) error {
	if errors.Is(err, ErrTooFewPoints) {
		logger.Warn("Clustering failed: %v", err)
		return domain.ErrClusteringFailed
	}
	return err
}

// score computes the per-label arrays and the overall metrics. Per-label
// arrays are indexed by ascending raw label, so the outlier bucket comes
// first when present. d is the distance matrix of points.
func score(points, d [][]float64, rawLabels []int, p domain.ClusteringParams) (domain.ClusterLabelInfo, domain.ClusteringMetrics) {
	distinct, members := groupByLabel(rawLabels)
	info := domain.ClusterLabelInfo{
		NPerCluster:            make([]int, len(distinct)),
		ClusterCenterCoords:    make([]domain.Coord, len(distinct)),
		ClusterValidityIndices: []float64{},
		OutlierBucket:          len(distinct) > 0 && distinct[0] == -1,
	}
	for c, centre := range centroids(points, distinct, members) {
		info.NPerCluster[c] = len(members[distinct[c]])
		info.ClusterCenterCoords[c] = domain.Coord{centre[0], centre[1]}
	}

	var metrics domain.ClusteringMetrics
	if p.HDBSCANMinClusterSize <= 2 || p.HDBSCANMinSamples <= 2 {
		logger.Warn("Validity index cannot be calculated when min cluster size or min samples are 2 or less")
	} else if dbcv, perCluster, ok := ValidityIndex(points, rawLabels); ok {
		metrics.DBCV = &dbcv
		if info.OutlierBucket {
			perCluster = append([]float64{0}, perCluster...)
		}
		info.ClusterValidityIndices = perCluster
	}

	if v, ok := silhouette(d, rawLabels); ok {
		metrics.SilhouetteCoefficient = &v
	}
	if v, ok := DaviesBouldin(points, rawLabels); ok {
		metrics.DaviesBouldinIndex = &v
	}
	if v, ok := dunn(d, rawLabels); ok {
		metrics.DunnIndex = &v
	}
	return info, metrics
}
