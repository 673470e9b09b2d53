package clustering

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// ErrTooFewPoints is returned when there are not enough points to build
// a neighbourhood graph or a spanning tree.
var ErrTooFewPoints = errors.New("too few points")

const (
	smoothKNNTolerance   = 1e-5
	minKDistScale        = 1e-3
	negativeSampleRate   = 5
	repulsionStrength    = 1.0
	initialLearningRate  = 1.0
	gradientClip         = 4.0
	curveSamples         = 300
	largeDatasetSize     = 10000
	smallDatasetEpochs   = 500
	largeDatasetEpochs   = 200
	randomInitHalfExtent = 10.0
)

// ReduceOptions configures the manifold embedding.
type ReduceOptions struct {
	NNeighbors int
	Metric     string
	MinDist    float64
	Spread     float64
	Seed       int64

	// Epochs overrides the number of optimisation epochs when positive.
	Epochs int
}

// Reduce embeds data into two dimensions, preserving local neighbourhoods.
func Reduce(ctx context.Context, data [][]float64, opts ReduceOptions) ([]domain.Coord, error) {
	n := len(data)
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	dist, err := metricFunc(opts.Metric)
	if err != nil {
		return nil, err
	}
	if opts.Spread <= 0 {
		opts.Spread = 1.0
	}
	k := opts.NNeighbors
	if k > n {
		k = n
	}
	if k < 2 {
		k = 2
	}

	knnIdx, knnDist := nearestNeighbors(data, k, dist)
	sigmas, rhos := smoothKNNDist(knnDist, k)
	graph := fuzzySimplicialSet(knnIdx, knnDist, sigmas, rhos)

	epochs := opts.Epochs
	if epochs <= 0 {
		epochs = smallDatasetEpochs
		if n > largeDatasetSize {
			epochs = largeDatasetEpochs
		}
	}
	a, b := fitCurve(opts.Spread, opts.MinDist)

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), 0x9e3779b97f4a7c15))
	embedding := randomInit(n, rng)
	if err := optimizeLayout(ctx, embedding, graph, epochs, a, b, rng); err != nil {
		return nil, err
	}

	coords := make([]domain.Coord, n)
	for i, p := range embedding {
		coords[i] = domain.Coord{p[0], p[1]}
	}
	return coords, nil
}

// nearestNeighbors returns, for every point, the indices and distances
// of its k nearest points including itself, nearest first.
func nearestNeighbors(data [][]float64, k int, dist distanceFunc) ([][]int, [][]float64) {
	n := len(data)
	d := pairwise(data, dist)

	idx := make([][]int, n)
	dists := make([][]float64, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range order {
			order[j] = j
		}
		row := d[i]
		sort.SliceStable(order, func(x, y int) bool {
			a, b := order[x], order[y]
			if row[a] != row[b] {
				return row[a] < row[b]
			}
			// self first among zero-distance duplicates
			return a == i && b != i
		})
		idx[i] = append([]int(nil), order[:k]...)
		dists[i] = make([]float64, k)
		for j, o := range idx[i] {
			dists[i][j] = row[o]
		}
	}
	return idx, dists
}

// smoothKNNDist finds, for each point, the distance to its nearest
// non-identical neighbour (rho) and the bandwidth (sigma) at which the
// fuzzy neighbourhood has total membership log2(k).
func smoothKNNDist(dists [][]float64, k int) (sigmas, rhos []float64) {
	n := len(dists)
	target := math.Log2(float64(k))
	sigmas = make([]float64, n)
	rhos = make([]float64, n)

	var all []float64
	for _, row := range dists {
		all = append(all, row...)
	}
	meanAll := stat.Mean(all, nil)

	for i, row := range dists {
		for _, d := range row {
			if d > 0 {
				rhos[i] = d
				break
			}
		}

		lo, hi, mid := 0.0, math.Inf(1), 1.0
		for iter := 0; iter < 64; iter++ {
			psum := 0.0
			for j := 1; j < len(row); j++ {
				d := row[j] - rhos[i]
				if d > 0 {
					psum += math.Exp(-d / mid)
				} else {
					psum++
				}
			}
			if math.Abs(psum-target) < smoothKNNTolerance {
				break
			}
			if psum > target {
				hi = mid
				mid = (lo + hi) / 2
			} else {
				lo = mid
				if math.IsInf(hi, 1) {
					mid *= 2
				} else {
					mid = (lo + hi) / 2
				}
			}
		}
		sigmas[i] = mid

		if rhos[i] > 0 {
			if m := stat.Mean(row, nil); sigmas[i] < minKDistScale*m {
				sigmas[i] = minKDistScale * m
			}
		} else if sigmas[i] < minKDistScale*meanAll {
			sigmas[i] = minKDistScale * meanAll
		}
	}
	return sigmas, rhos
}

// edge is a weighted directed edge of the fuzzy graph.
type edge struct {
	head, tail int
	weight     float64
}

// fuzzySimplicialSet builds the symmetric membership graph as the fuzzy
// union of the directed neighbourhoods, listing both directions of each
// edge ordered by head then tail.
func fuzzySimplicialSet(idx [][]int, dists [][]float64, sigmas, rhos []float64) []edge {
	n := len(idx)
	directed := make([]map[int]float64, n)
	for i := range directed {
		directed[i] = make(map[int]float64, len(idx[i]))
	}
	for i := range idx {
		for j, nb := range idx[i] {
			if nb == i {
				continue
			}
			var w float64
			if d := dists[i][j] - rhos[i]; d <= 0 || sigmas[i] == 0 {
				w = 1
			} else {
				w = math.Exp(-d / sigmas[i])
			}
			directed[i][nb] = w
		}
	}

	incoming := make([][]int, n)
	for i := range directed {
		for j := range directed[i] {
			incoming[j] = append(incoming[j], i)
		}
	}

	var edges []edge
	for i := 0; i < n; i++ {
		tails := make(map[int]struct{}, len(directed[i])+len(incoming[i]))
		for j := range directed[i] {
			tails[j] = struct{}{}
		}
		for _, j := range incoming[i] {
			tails[j] = struct{}{}
		}
		sorted := make([]int, 0, len(tails))
		for j := range tails {
			sorted = append(sorted, j)
		}
		sort.Ints(sorted)
		for _, j := range sorted {
			a, b := directed[i][j], directed[j][i]
			if w := a + b - a*b; w > 0 {
				edges = append(edges, edge{head: i, tail: j, weight: w})
			}
		}
	}
	return edges
}

// fitCurve fits 1/(1 + a*x^(2b)) to the offset exponential decay defined
// by spread and minDist using damped Gauss-Newton least squares.
func fitCurve(spread, minDist float64) (a, b float64) {
	xs := make([]float64, curveSamples)
	floats.Span(xs, 0, 3*spread)
	ys := make([]float64, curveSamples)
	for i, x := range xs {
		if x < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}
	return levenbergMarquardt(xs, ys, 1, 1)
}

func randomInit(n int, rng *rand.Rand) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i][0] = rng.Float64()*2*randomInitHalfExtent - randomInitHalfExtent
		out[i][1] = rng.Float64()*2*randomInitHalfExtent - randomInitHalfExtent
	}
	rescale(out)
	return out
}

// rescale maps each axis of the layout onto [0, 10].
func rescale(layout [][2]float64) {
	for d := 0; d < 2; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range layout {
			lo = math.Min(lo, p[d])
			hi = math.Max(hi, p[d])
		}
		if hi == lo {
			continue
		}
		for i := range layout {
			layout[i][d] = 10 * (layout[i][d] - lo) / (hi - lo)
		}
	}
}

func clip(v float64) float64 {
	return math.Max(-gradientClip, math.Min(gradientClip, v))
}

// optimizeLayout runs stochastic gradient descent on the cross entropy
// between the fuzzy graph and the low-dimensional layout, with negative
// sampling for the repulsive term.
func optimizeLayout(ctx context.Context, layout [][2]float64, graph []edge, epochs int, a, b float64, rng *rand.Rand) error {
	maxWeight := 0.0
	for _, e := range graph {
		maxWeight = math.Max(maxWeight, e.weight)
	}
	var edges []edge
	for _, e := range graph {
		if e.weight >= maxWeight/float64(epochs) {
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		return nil
	}

	epochsPerSample := make([]float64, len(edges))
	nextSample := make([]float64, len(edges))
	epochsPerNegative := make([]float64, len(edges))
	nextNegative := make([]float64, len(edges))
	for i, e := range edges {
		epochsPerSample[i] = maxWeight / e.weight
		nextSample[i] = epochsPerSample[i]
		epochsPerNegative[i] = epochsPerSample[i] / negativeSampleRate
		nextNegative[i] = epochsPerNegative[i]
	}

	n := len(layout)
	alpha := initialLearningRate
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fe := float64(epoch)
		for i, e := range edges {
			if nextSample[i] > fe {
				continue
			}
			cur, other := &layout[e.head], &layout[e.tail]
			dsq := sqDist(*cur, *other)
			coeff := 0.0
			if dsq > 0 {
				coeff = -2 * a * b * math.Pow(dsq, b-1) / (a*math.Pow(dsq, b) + 1)
			}
			for d := 0; d < 2; d++ {
				g := clip(coeff * (cur[d] - other[d]))
				cur[d] += g * alpha
				other[d] -= g * alpha
			}
			nextSample[i] += epochsPerSample[i]

			nNeg := int((fe - nextNegative[i]) / epochsPerNegative[i])
			if nNeg < 0 {
				nNeg = 0
			}
			for p := 0; p < nNeg; p++ {
				k := rng.IntN(n)
				if k == e.head {
					continue
				}
				neg := layout[k]
				dsq := sqDist(*cur, neg)
				coeff := 0.0
				if dsq > 0 {
					coeff = 2 * repulsionStrength * b / ((0.001 + dsq) * (a*math.Pow(dsq, b) + 1))
				}
				for d := 0; d < 2; d++ {
					g := gradientClip
					if coeff > 0 {
						g = clip(coeff * (cur[d] - neg[d]))
					}
					cur[d] += g * alpha
				}
			}
			nextNegative[i] += float64(nNeg) * epochsPerNegative[i]
		}
		alpha = initialLearningRate * (1 - fe/float64(epochs))
	}
	return nil
}

func sqDist(p, q [2]float64) float64 {
	dx, dy := p[0]-q[0], p[1]-q[1]
	return dx*dx + dy*dy
}
