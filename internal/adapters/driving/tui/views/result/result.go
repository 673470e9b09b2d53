// Package result renders a finished filter set, clustering or article group.
package result

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// previewIDs is how many article ids a filter set summary lists.
const previewIDs = 20

// View shows one resource in a scrollable viewport.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model
	kind     domain.ResourceKind
	hash     string
	result   domain.Result
}

// NewView creates an empty result view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, viewport: viewport.New(80, 20)}
}

// SetResult replaces the displayed resource.
func (v *View) SetResult(kind domain.ResourceKind, hash string, result domain.Result) {
	v.kind, v.hash, v.result = kind, hash, result
	v.viewport.SetContent(Render(v.styles, result))
	v.viewport.GotoTop()
}

// Result returns the displayed resource.
func (v *View) Result() domain.Result { return v.result }

// Update scrolls the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the header and the viewport.
func (v *View) View() string {
	header := v.styles.Title.Render(fmt.Sprintf("%s %s", v.kind, shortHash(v.hash)))
	return lipgloss.JoinVertical(lipgloss.Left, header, v.viewport.View())
}

// SetDimensions sizes the viewport, leaving room for the header and status bar.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-4, 1)
}

// Render formats a result as plain styled text.
func Render(s *styles.Styles, r domain.Result) string {
	switch r := r.(type) {
	case *domain.FilterSetResult:
		return renderFilterSet(s, r)
	case *domain.ClusteringResult:
		return renderClustering(s, r)
	case *domain.ArticleGroupResult:
		return renderGroups(s, r)
	default:
		return s.Muted.Render("Nothing to show.")
	}
}

func renderFilterSet(s *styles.Styles, r *domain.FilterSetResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", s.Heading.Render(fmt.Sprintf("%d articles", len(r.ArticleIDs))))

	n := min(len(r.ArticleIDs), previewIDs)
	ids := make([]string, n)
	for i := range n {
		ids[i] = strconv.FormatInt(r.ArticleIDs[i], 10)
	}
	b.WriteString(strings.Join(ids, ", "))
	if len(r.ArticleIDs) > n {
		b.WriteString(s.Muted.Render(fmt.Sprintf(", … %d more", len(r.ArticleIDs)-n)))
	}
	return b.String()
}

func renderClustering(s *styles.Styles, r *domain.ClusteringResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", s.Heading.Render(
		fmt.Sprintf("%d clusters over %d articles", r.NumClusters, len(r.ArticleIDs))))

	metrics := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Metric", "Score").
		Row("DBCV", score(r.Metrics.DBCV)).
		Row("Silhouette", score(r.Metrics.SilhouetteCoefficient)).
		Row("Davies-Bouldin", score(r.Metrics.DaviesBouldinIndex)).
		Row("Dunn", score(r.Metrics.DunnIndex))
	b.WriteString(metrics.String())
	b.WriteString("\n\n")

	info := r.LabelInfo
	clusters := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Cluster", "Articles", "Validity", "Centre")
	for i, n := range info.NPerCluster {
		label := strconv.Itoa(i)
		if info.OutlierBucket {
			label = strconv.Itoa(i - 1)
			if i == 0 {
				label = "outliers"
			}
		}
		validity := "-"
		if i < len(info.ClusterValidityIndices) {
			validity = fmt.Sprintf("%.3f", info.ClusterValidityIndices[i])
		}
		c := info.ClusterCenterCoords[i]
		clusters.Row(label, strconv.Itoa(n), validity, fmt.Sprintf("(%.2f, %.2f)", c[0], c[1]))
	}
	b.WriteString(clusters.String())
	return b.String()
}

func renderGroups(s *styles.Styles, r *domain.ArticleGroupResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", s.Heading.Render(fmt.Sprintf("%d groups", len(r.Groups))))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Group", "Articles", "Top terms")
	for _, g := range r.Groups {
		t.Row(strconv.Itoa(g.ID), strconv.Itoa(g.NumArticles), strings.Join(g.TopTerms, ", "))
	}
	b.WriteString(t.String())
	return b.String()
}

func score(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
