package clustering

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// distanceFunc measures the dissimilarity of two equal-length vectors.
type distanceFunc func(a, b []float64) float64

func metricFunc(name string) (distanceFunc, error) {
	switch name {
	case domain.MetricCosine:
		return cosineDistance, nil
	case domain.MetricEuclidean:
		return euclidean, nil
	case domain.MetricManhattan:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 1) }, nil
	default:
		return nil, fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidInput, name)
	}
}

func euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// cosineDistance is 1 - cos(a, b). Two zero vectors are identical; a zero
// vector is maximally distant from anything else.
func cosineDistance(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	switch {
	case na == 0 && nb == 0:
		return 0
	case na == 0 || nb == 0:
		return 1
	}
	d := 1 - floats.Dot(a, b)/(na*nb)
	return math.Max(d, 0)
}

// CosineDistance is exported for term ranking.
func CosineDistance(a, b []float64) float64 { return cosineDistance(a, b) }

// pairwise returns the full symmetric distance matrix of points.
func pairwise(points [][]float64, dist distanceFunc) [][]float64 {
	n := len(points)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(points[i], points[j])
			out[i][j] = d
			out[j][i] = d
		}
	}
	return out
}

func coordsToRows(coords []domain.Coord) [][]float64 {
	rows := make([][]float64, len(coords))
	for i, c := range coords {
		rows[i] = []float64{c[0], c[1]}
	}
	return rows
}
