package clustering

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// groupByLabel returns the distinct labels ascending and the member
// indices of each.
func groupByLabel(labels []int) ([]int, map[int][]int) {
	members := make(map[int][]int)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}
	distinct := make([]int, 0, len(members))
	for l := range members {
		distinct = append(distinct, l)
	}
	sort.Ints(distinct)
	return distinct, members
}

// labelCountValid reports whether 2 <= distinct labels <= n-1, the range
// in which silhouette and Davies-Bouldin are defined.
func labelCountValid(distinct, n int) bool {
	return distinct >= 2 && distinct <= n-1
}

// Silhouette is the mean silhouette coefficient over all points, treating
// every distinct label (including -1) as a cluster.
func Silhouette(points [][]float64, labels []int) (float64, bool) {
	return silhouette(pairwise(points, euclidean), labels)
}

func silhouette(d [][]float64, labels []int) (float64, bool) {
	distinct, members := groupByLabel(labels)
	if !labelCountValid(len(distinct), len(d)) {
		return 0, false
	}

	total := 0.0
	for i, li := range labels {
		own := members[li]
		if len(own) == 1 {
			continue
		}
		a := 0.0
		for _, j := range own {
			a += d[i][j]
		}
		a /= float64(len(own) - 1)

		b := math.Inf(1)
		for _, l := range distinct {
			if l == li {
				continue
			}
			mean := 0.0
			for _, j := range members[l] {
				mean += d[i][j]
			}
			b = math.Min(b, mean/float64(len(members[l])))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(len(d)), true
}

// centroids returns the mean point of each label, in ascending label order.
func centroids(points [][]float64, distinct []int, members map[int][]int) [][]float64 {
	dims := len(points[0])
	out := make([][]float64, len(distinct))
	for c, l := range distinct {
		centre := make([]float64, dims)
		for _, i := range members[l] {
			floats.Add(centre, points[i])
		}
		floats.Scale(1/float64(len(members[l])), centre)
		out[c] = centre
	}
	return out
}

// DaviesBouldin is the mean over clusters of the worst ratio of summed
// intra-cluster scatter to centroid separation.
func DaviesBouldin(points [][]float64, labels []int) (float64, bool) {
	distinct, members := groupByLabel(labels)
	if !labelCountValid(len(distinct), len(points)) {
		return 0, false
	}
	centres := centroids(points, distinct, members)

	scatter := make([]float64, len(distinct))
	for c, l := range distinct {
		for _, i := range members[l] {
			scatter[c] += euclidean(points[i], centres[c])
		}
		scatter[c] /= float64(len(members[l]))
	}

	allScatterZero, allSepZero := true, true
	sep := pairwise(centres, euclidean)
	for c := range distinct {
		if scatter[c] != 0 {
			allScatterZero = false
		}
		for o := range distinct {
			if o != c && sep[c][o] != 0 {
				allSepZero = false
			}
		}
	}
	if allScatterZero || allSepZero {
		return 0, true
	}

	total := 0.0
	for c := range distinct {
		worst := 0.0
		for o := range distinct {
			if o == c {
				continue
			}
			s := sep[c][o]
			if s == 0 {
				s = math.Inf(1)
			}
			worst = math.Max(worst, (scatter[c]+scatter[o])/s)
		}
		total += worst
	}
	return total / float64(len(distinct)), true
}

// Dunn is the smallest distance between points of different clusters
// divided by the largest cluster diameter.
func Dunn(points [][]float64, labels []int) (float64, bool) {
	return dunn(pairwise(points, euclidean), labels)
}

func dunn(d [][]float64, labels []int) (float64, bool) {
	distinct, _ := groupByLabel(labels)
	if len(distinct) < 2 {
		return 0, false
	}

	minInter, maxDiameter := math.Inf(1), 0.0
	for i := range d {
		for j := i + 1; j < len(d); j++ {
			if labels[i] == labels[j] {
				maxDiameter = math.Max(maxDiameter, d[i][j])
			} else {
				minInter = math.Min(minInter, d[i][j])
			}
		}
	}
	if maxDiameter == 0 {
		return 0, false
	}
	return minInter / maxDiameter, true
}
