package clustering

import (
	"fmt"
	"math"
	"sort"
)

// HDBSCANOptions configures density clustering.
type HDBSCANOptions struct {
	MinClusterSize          int
	MinSamples              int
	ClusterSelectionEpsilon float64
}

// linkageRow is one merge of the single-linkage tree. Node ids below the
// number of points are points; merge i creates node n+i.
type linkageRow struct {
	left, right int
	dist        float64
	size        int
}

// Hierarchy is the fitted single-linkage tree of a point set.
type Hierarchy struct {
	n       int
	linkage []linkageRow
}

// condensedRow is one edge of the condensed cluster tree.
type condensedRow struct {
	parent, child int
	lambda        float64
	childSize     int
}

// BuildHierarchy computes core distances with minSamples neighbours, the
// minimum spanning tree of the mutual reachability graph and its
// single-linkage merge tree.
// Fewer than two points, or no more points than minSamples, yields
// ErrTooFewPoints.
func BuildHierarchy(points [][]float64, minSamples int) (*Hierarchy, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	return buildHierarchy(pairwise(points, euclidean), minSamples)
}

// buildHierarchy is BuildHierarchy over a precomputed distance matrix.
func buildHierarchy(d [][]float64, minSamples int) (*Hierarchy, error) {
	n := len(d)
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	if minSamples < 1 {
		minSamples = 1
	}
	if n <= minSamples {
		return nil, fmt.Errorf("%w: %d points for %d min samples", ErrTooFewPoints, n, minSamples)
	}

	core := make([]float64, n)
	sorted := make([]float64, n)
	for i := range d {
		copy(sorted, d[i])
		sort.Float64s(sorted)
		core[i] = sorted[minSamples]
	}

	mst := primMST(n, func(i, j int) float64 {
		return math.Max(d[i][j], math.Max(core[i], core[j]))
	})
	sort.SliceStable(mst, func(i, j int) bool { return mst[i].weight < mst[j].weight })
	return &Hierarchy{n: n, linkage: singleLinkage(n, mst)}, nil
}

// primMST returns the n-1 edges of the minimum spanning tree of the
// complete graph weighted by w, in the order they were added.
func primMST(n int, w func(i, j int) float64) []edge {
	inTree := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]edge, 0, n-1)
	current := 0
	inTree[0] = true
	for len(edges) < n-1 {
		next, nextW := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if d := w(current, j); d < best[j] {
				best[j] = d
				from[j] = current
			}
			if best[j] < nextW || next == -1 {
				next, nextW = j, best[j]
			}
		}
		inTree[next] = true
		edges = append(edges, edge{head: from[next], tail: next, weight: nextW})
		current = next
	}
	return edges
}

// singleLinkage turns sorted spanning tree edges into merge rows.
func singleLinkage(n int, mst []edge) []linkageRow {
	parent := make([]int, 2*n-1)
	size := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
		if i < n {
			size[i] = 1
		}
	}
	find := func(x int) int {
		root := x
		for parent[root] != root {
			root = parent[root]
		}
		for parent[x] != root {
			parent[x], x = root, parent[x]
		}
		return root
	}

	rows := make([]linkageRow, 0, n-1)
	next := n
	for _, e := range mst {
		a, b := find(e.head), find(e.tail)
		rows = append(rows, linkageRow{left: a, right: b, dist: e.weight, size: size[a] + size[b]})
		parent[a], parent[b] = next, next
		size[next] = size[a] + size[b]
		next++
	}
	return rows
}

func (h *Hierarchy) nodeSize(node int) int {
	if node < h.n {
		return 1
	}
	return h.linkage[node-h.n].size
}

// descendants lists node and everything below it, breadth first.
func (h *Hierarchy) descendants(node int) []int {
	out := []int{}
	queue := []int{node}
	for len(queue) > 0 {
		out = append(out, queue...)
		var next []int
		for _, x := range queue {
			if x >= h.n {
				row := h.linkage[x-h.n]
				next = append(next, row.left, row.right)
			}
		}
		queue = next
	}
	return out
}

// condense collapses the merge tree into clusters of at least
// minClusterSize points. Cluster ids start at n, which is the root.
func (h *Hierarchy) condense(minClusterSize int) []condensedRow {
	root := 2 * (h.n - 1)
	relabel := make([]int, root+1)
	relabel[root] = h.n
	nextLabel := h.n + 1
	ignore := make([]bool, root+1)

	var out []condensedRow
	fallOut := func(parent, node int, lambda float64) {
		for _, sub := range h.descendants(node) {
			if sub < h.n {
				out = append(out, condensedRow{parent: parent, child: sub, lambda: lambda, childSize: 1})
			}
			ignore[sub] = true
		}
	}

	for _, node := range h.descendants(root) {
		if ignore[node] || node < h.n {
			continue
		}
		row := h.linkage[node-h.n]
		lambda := math.Inf(1)
		if row.dist > 0 {
			lambda = 1 / row.dist
		}
		left, right := row.left, row.right
		leftCount, rightCount := h.nodeSize(left), h.nodeSize(right)
		p := relabel[node]

		switch {
		case leftCount >= minClusterSize && rightCount >= minClusterSize:
			relabel[left] = nextLabel
			nextLabel++
			out = append(out, condensedRow{parent: p, child: relabel[left], lambda: lambda, childSize: leftCount})
			relabel[right] = nextLabel
			nextLabel++
			out = append(out, condensedRow{parent: p, child: relabel[right], lambda: lambda, childSize: rightCount})
		case leftCount < minClusterSize && rightCount < minClusterSize:
			fallOut(p, left, lambda)
			fallOut(p, right, lambda)
		case leftCount < minClusterSize:
			relabel[right] = p
			fallOut(p, left, lambda)
		default:
			relabel[left] = p
			fallOut(p, right, lambda)
		}
	}
	return out
}

// condensedTree indexes a condensed tree by cluster.
type condensedTree struct {
	rows     []condensedRow
	root     int
	births   map[int]float64 // lambda at which each cluster appears
	parentOf map[int]int     // parent of each non-root cluster
	children map[int][]int   // child clusters in row order
}

func newCondensedTree(rows []condensedRow, root int) *condensedTree {
	t := &condensedTree{
		rows:     rows,
		root:     root,
		births:   map[int]float64{root: 0},
		parentOf: map[int]int{},
		children: map[int][]int{},
	}
	for _, r := range rows {
		if r.childSize > 1 {
			t.births[r.child] = r.lambda
			t.parentOf[r.child] = r.parent
			t.children[r.parent] = append(t.children[r.parent], r.child)
		}
	}
	return t
}

// clusters returns every cluster id, ascending.
func (t *condensedTree) clusters() []int {
	ids := make([]int, 0, len(t.births))
	for c := range t.births {
		ids = append(ids, c)
	}
	sort.Ints(ids)
	return ids
}

func (t *condensedTree) stability() map[int]float64 {
	s := make(map[int]float64, len(t.births))
	for c := range t.births {
		s[c] = 0
	}
	for _, r := range t.rows {
		s[r.parent] += (r.lambda - t.births[r.parent]) * float64(r.childSize)
	}
	return s
}

func (t *condensedTree) subclusters(c int) []int {
	var out []int
	queue := []int{c}
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		for _, ch := range t.children[x] {
			out = append(out, ch)
			queue = append(queue, ch)
		}
	}
	return out
}

// selectEOM picks the clusters maximising total stability, never the root.
func (t *condensedTree) selectEOM(epsilon float64) map[int]bool {
	stability := t.stability()
	ids := t.clusters()
	selected := make(map[int]bool, len(ids))

	// descending, root (smallest id) excluded
	for i := len(ids) - 1; i >= 1; i-- {
		selected[ids[i]] = true
	}
	for i := len(ids) - 1; i >= 1; i-- {
		node := ids[i]
		sub := 0.0
		for _, ch := range t.children[node] {
			sub += stability[ch]
		}
		if sub > stability[node] {
			selected[node] = false
			stability[node] = sub
		} else {
			for _, d := range t.subclusters(node) {
				selected[d] = false
			}
		}
	}

	if epsilon != 0 && len(t.parentOf) > 0 {
		var leaves []int
		for _, c := range ids {
			if selected[c] {
				leaves = append(leaves, c)
			}
		}
		chosen := t.epsilonSearch(leaves, epsilon)
		for c := range selected {
			selected[c] = chosen[c]
		}
	}
	return selected
}

// epsilonSearch replaces clusters born below distance epsilon with their
// nearest ancestor born at or above it.
func (t *condensedTree) epsilonSearch(leaves []int, epsilon float64) map[int]bool {
	chosen := map[int]bool{}
	processed := map[int]bool{}
	for _, leaf := range leaves {
		if 1/t.births[leaf] >= epsilon {
			chosen[leaf] = true
			continue
		}
		if processed[leaf] {
			continue
		}
		c := t.traverseUpwards(leaf, epsilon)
		chosen[c] = true
		for _, d := range t.subclusters(c) {
			processed[d] = true
		}
	}
	return chosen
}

func (t *condensedTree) traverseUpwards(leaf int, epsilon float64) int {
	parent := t.parentOf[leaf]
	if parent == t.root {
		return leaf
	}
	if 1/t.births[parent] > epsilon {
		return parent
	}
	return t.traverseUpwards(parent, epsilon)
}

// label assigns each point the dense index of its nearest selected
// ancestor cluster, or -1.
func (t *condensedTree) label(n int, selected map[int]bool) []int {
	var chosen []int
	for c, ok := range selected {
		if ok {
			chosen = append(chosen, c)
		}
	}
	sort.Ints(chosen)
	index := make(map[int]int, len(chosen))
	for i, c := range chosen {
		index[c] = i
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for _, r := range t.rows {
		if r.child >= n {
			continue
		}
		for c := r.parent; ; c = t.parentOf[c] {
			if selected[c] {
				labels[r.child] = index[c]
				break
			}
			if c == t.root {
				break
			}
		}
	}
	return labels
}

// Labels runs excess-of-mass cluster selection over the condensed tree.
func (h *Hierarchy) Labels(opts HDBSCANOptions) []int {
	tree := newCondensedTree(h.condense(opts.MinClusterSize), h.n)
	return tree.label(h.n, tree.selectEOM(opts.ClusterSelectionEpsilon))
}

// CutAt flattens the single-linkage tree at distance cut. Components
// smaller than minClusterSize become outliers; the rest are numbered by
// the order in which their root merge was created.
func (h *Hierarchy) CutAt(cut float64, minClusterSize int) []int {
	parent := make([]int, 2*h.n-1)
	for i := range parent {
		parent[i] = i
	}
	for i, row := range h.linkage {
		if row.dist < cut {
			parent[row.left] = h.n + i
			parent[row.right] = h.n + i
		}
	}
	find := func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}

	roots := make([]int, h.n)
	sizes := map[int]int{}
	for i := range roots {
		roots[i] = find(i)
		sizes[roots[i]]++
	}
	unique := make([]int, 0, len(sizes))
	for r := range sizes {
		unique = append(unique, r)
	}
	sort.Ints(unique)

	labelOf := make(map[int]int, len(unique))
	next := 0
	for _, r := range unique {
		if sizes[r] < minClusterSize {
			labelOf[r] = -1
			continue
		}
		labelOf[r] = next
		next++
	}

	labels := make([]int, h.n)
	for i, r := range roots {
		labels[i] = labelOf[r]
	}
	return labels
}
