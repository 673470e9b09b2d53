package domain

import (
	"sort"
	"strconv"
)

// ScatterTrace is a plotly scatter trace.
type ScatterTrace struct {
	X      []float64      `json:"x"`
	Y      []float64      `json:"y"`
	Mode   string         `json:"mode"`
	Extra  map[string]any `json:"extra"`
	Marker map[string]any `json:"marker"`
}

// HeatmapTrace is a plotly heatmap trace.
type HeatmapTrace struct {
	Type        string            `json:"type"`
	X           []string          `json:"x"`
	Y           []string          `json:"y"`
	Z           [][]*float64      `json:"z"`
	Labels      map[string]string `json:"labels"`
	HoverOnGaps bool              `json:"hoverongaps"`
	Extra       map[string]any    `json:"extra"`
}

// ClusterPalette holds high-contrast categorical colours, cycled by label.
var ClusterPalette = []string{
	"#d60000", "#018700", "#b500ff", "#05acc6", "#97ff00", "#ffa52f",
	"#ff8ec8", "#79525e", "#00fdcf", "#afa5ff", "#93ac83", "#9a6900",
	"#366962", "#d3008c", "#fdf490", "#c86e66", "#9ee2ff", "#00c846",
	"#a877ac", "#b8ba01", "#f4bfb1", "#ff28fd", "#f2cdff", "#009e7c",
	"#ff6200", "#56642a", "#953f1f", "#90318e", "#ff3464", "#a0e491",
	"#8c9ab1", "#829026",
}

func newScatter() *ScatterTrace {
	return &ScatterTrace{
		X:      []float64{},
		Y:      []float64{},
		Mode:   "markers",
		Extra:  map[string]any{},
		Marker: map[string]any{},
	}
}

// PointScatter plots every clustered point coloured by label.
// Points without a cluster are left out.
func PointScatter(articleIDs []int64, labels []*int, coords []Coord) *ScatterTrace {
	trace := newScatter()
	if len(coords) == 0 {
		return trace
	}

	var (
		ids     []int64
		kept    []int
		sizes   []int
		opacity []float64
		colours []string
	)
	for i, label := range labels {
		if label == nil {
			continue
		}
		trace.X = append(trace.X, coords[i][0])
		trace.Y = append(trace.Y, coords[i][1])
		ids = append(ids, articleIDs[i])
		kept = append(kept, *label)
		sizes = append(sizes, 10)
		opacity = append(opacity, 0.8)
		colours = append(colours, ClusterPalette[*label%len(ClusterPalette)])
	}
	trace.Extra["article_ids"] = ids
	trace.Extra["labels"] = kept
	trace.Marker["size"] = sizes
	trace.Marker["opacity"] = opacity
	trace.Marker["color"] = colours
	return trace
}

// CentroidScatter plots one point per cluster centre.
func CentroidScatter(info ClusterLabelInfo) *ScatterTrace {
	trace := newScatter()
	if len(info.ClusterCenterCoords) == 0 {
		return trace
	}
	for _, c := range info.ClusterCenterCoords {
		trace.X = append(trace.X, c[0])
		trace.Y = append(trace.Y, c[1])
	}
	trace.Extra["n_per_cluster"] = info.NPerCluster
	trace.Extra["cluster_validity_indices"] = info.ClusterValidityIndices
	return trace
}

// TermHeatmap marks which top terms appear in which group.
// Columns are sorted group ids, rows the sorted union of terms.
func TermHeatmap(groups []ArticleGroup) *HeatmapTrace {
	sorted := make([]ArticleGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := make(map[string]bool)
	terms := []string{}
	for _, g := range groups {
		for _, t := range g.TopTerms {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	sort.Strings(terms)

	present := 1.0
	x := make([]string, 0, len(sorted))
	z := make([][]*float64, 0, len(sorted))
	for _, g := range sorted {
		x = append(x, strconv.Itoa(g.ID))
		inGroup := make(map[string]bool, len(g.TopTerms))
		for _, t := range g.TopTerms {
			inGroup[t] = true
		}
		row := make([]*float64, len(terms))
		for i, t := range terms {
			if inGroup[t] {
				row[i] = &present
			}
		}
		z = append(z, row)
	}

	return &HeatmapTrace{
		Type:   "heatmap",
		X:      x,
		Y:      terms,
		Z:      z,
		Labels: map[string]string{"x": "Cluster", "y": "Term", "z": "Present"},
		Extra:  map[string]any{},
	}
}
