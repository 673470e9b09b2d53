package clustering

import (
	"math"
)

// clusterDensity holds the density summary of one cluster.
type clusterDensity struct {
	members    []int     // indices into the point set
	core       []float64 // all-points core distance per member
	internal   []int     // member positions of internal MST vertices
	sparseness float64   // largest internal MST edge
}

// ValidityIndex computes the density-based cluster validity index and the
// per-cluster scores for clusters 0..max(labels). Outliers (-1) are not
// scored but count towards the total size. ok is false when fewer than
// two clusters exist, since separation is then undefined.
func ValidityIndex(points [][]float64, labels []int) (score float64, perCluster []float64, ok bool) {
	maxLabel := -1
	for _, l := range labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	k := maxLabel + 1
	if k < 2 {
		return 0, nil, false
	}
	dims := len(points[0])

	densities := make([]*clusterDensity, k)
	for c := 0; c < k; c++ {
		var members []int
		for i, l := range labels {
			if l == c {
				members = append(members, i)
			}
		}
		if len(members) > 0 {
			densities[c] = newClusterDensity(points, members, dims)
		}
	}

	sep := make([][]float64, k)
	for i := range sep {
		sep[i] = make([]float64, k)
		for j := range sep[i] {
			sep[i][j] = math.Inf(1)
		}
	}
	for i := 0; i < k; i++ {
		if densities[i] == nil {
			continue
		}
		for j := i + 1; j < k; j++ {
			if densities[j] == nil {
				continue
			}
			s := densitySeparation(points, densities[i], densities[j])
			sep[i][j], sep[j][i] = s, s
		}
	}

	n := float64(len(points))
	perCluster = make([]float64, k)
	for i := 0; i < k; i++ {
		if densities[i] == nil {
			continue
		}
		minSep := math.Inf(1)
		for _, s := range sep[i] {
			minSep = math.Min(minSep, s)
		}
		sparse := densities[i].sparseness
		if denom := math.Max(minSep, sparse); denom > 0 && !math.IsInf(denom, 1) {
			perCluster[i] = (minSep - sparse) / denom
		}
		score += float64(len(densities[i].members)) / n * perCluster[i]
	}
	return score, perCluster, true
}

func newClusterDensity(points [][]float64, members []int, dims int) *clusterDensity {
	m := len(members)
	sub := make([][]float64, m)
	for i, idx := range members {
		sub[i] = points[idx]
	}
	d := pairwise(sub, euclidean)
	core := allPointsCoreDistance(d, dims)

	cd := &clusterDensity{members: members, core: core}
	if m < 2 {
		cd.internal = []int{0}
		return cd
	}

	mst := primMST(m, func(i, j int) float64 {
		return math.Max(d[i][j], math.Max(core[i], core[j]))
	})
	degree := make([]int, m)
	for _, e := range mst {
		degree[e.head]++
		degree[e.tail]++
	}
	isInternal := make([]bool, m)
	for v, deg := range degree {
		if deg > 1 {
			isInternal[v] = true
			cd.internal = append(cd.internal, v)
		}
	}
	if len(cd.internal) == 0 {
		for v := range degree {
			cd.internal = append(cd.internal, v)
		}
	}

	found := false
	for _, e := range mst {
		if isInternal[e.head] && isInternal[e.tail] {
			cd.sparseness = math.Max(cd.sparseness, e.weight)
			found = true
		}
	}
	if !found {
		for _, e := range mst {
			cd.sparseness = math.Max(cd.sparseness, e.weight)
		}
	}
	return cd
}

// allPointsCoreDistance is the inverse of the mean inverse d-th power of
// distances to the other members.
func allPointsCoreDistance(d [][]float64, dims int) []float64 {
	m := len(d)
	out := make([]float64, m)
	if m < 2 {
		return out
	}
	total := 0.0
	for i := range d {
		for j, v := range d[i] {
			if j != i && v != 0 {
				out[i] += math.Pow(1/v, float64(dims))
			}
		}
		out[i] /= float64(m - 1)
		total += out[i]
	}
	if total == 0 {
		return make([]float64, m)
	}
	for i := range out {
		out[i] = math.Pow(out[i], -1/float64(dims))
	}
	return out
}

// densitySeparation is the smallest mutual reachability distance between
// the internal vertices of two clusters.
func densitySeparation(points [][]float64, a, b *clusterDensity) float64 {
	best := math.Inf(1)
	for _, i := range a.internal {
		for _, j := range b.internal {
			d := euclidean(points[a.members[i]], points[b.members[j]])
			mr := math.Max(d, math.Max(a.core[i], b.core[j]))
			best = math.Min(best, mr)
		}
	}
	return best
}
