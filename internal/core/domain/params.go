package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ResourceKind names one of the derived resource types.
type ResourceKind string

const (
	// KindFilterSet selects article ids by full-text query.
	KindFilterSet ResourceKind = "filter_set"

	// KindClustering embeds and clusters a filter set.
	KindClustering ResourceKind = "clustering"

	// KindArticleGroup summarises each cluster of a clustering.
	KindArticleGroup ResourceKind = "article_group"
)

// ResourceKinds lists every supported kind in dependency order.
var ResourceKinds = []ResourceKind{KindFilterSet, KindClustering, KindArticleGroup}

// ParseResourceKind converts a path segment or flag value into a kind.
func ParseResourceKind(s string) (ResourceKind, error) {
	for _, k := range ResourceKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedResource, s)
}

// Params is the closed set of resource parameter types.
// Equal params always produce the same Hash, and the hash includes the
// concrete type so that different kinds never collide.
type Params interface {
	// Kind identifies the resource type.
	Kind() ResourceKind

	// Hash returns the stable content address of the params.
	Hash() string

	// Validate reports ErrInvalidInput when a field is out of range.
	Validate() error

	typeName() string
}

// FilterSetParams selects the articles a resource chain operates on.
type FilterSetParams struct {
	// FullTextSearchQuery filters the corpus. Nil or empty means no filter.
	FullTextSearchQuery *string `json:"full_text_search_query"`

	// TempArticleIDs are user-supplied articles outside the curated corpus.
	// They are appended to the query result, or used alone when the query is nil.
	TempArticleIDs []int64 `json:"temp_article_ids"`

	// Limit caps the number of query matches. Nil means unlimited.
	Limit *int `json:"limit"`
}

// MarshalJSON renders nil TempArticleIDs as an empty list so that
// omitted and empty lists hash identically.
func (p FilterSetParams) MarshalJSON() ([]byte, error) {
	type plain FilterSetParams
	out := plain(p)
	if out.TempArticleIDs == nil {
		out.TempArticleIDs = []int64{}
	}
	return json.Marshal(out)
}

func (FilterSetParams) Kind() ResourceKind { return KindFilterSet }
func (FilterSetParams) typeName() string   { return "FilterSetParams" }
func (p FilterSetParams) Hash() string     { return hashParams(p) }

// Query returns the search query, or "" when none is set.
func (p FilterSetParams) Query() string {
	if p.FullTextSearchQuery == nil {
		return ""
	}
	return *p.FullTextSearchQuery
}

func (p FilterSetParams) Validate() error {
	if p.Limit != nil && *p.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// Supported distance metrics for the dimensionality reduction.
const (
	MetricCosine    = "cosine"
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
)

// ClusteringParams configures reduction and density clustering of a filter set.
type ClusteringParams struct {
	FilterSet FilterSetParams `json:"filter_set"`

	UMAPSeed       int64   `json:"umap_seed"`
	UMAPNNeighbors int     `json:"umap_n_neighbors"`
	UMAPMetric     string  `json:"umap_metric"`
	UMAPMinDist    float64 `json:"umap_min_dist"`

	HDBSCANMinClusterSize           int     `json:"hdbscan_min_cluster_size"`
	HDBSCANMinSamples               int     `json:"hdbscan_min_samples"`
	HDBSCANClusterSelectionEpsilon  float64 `json:"hdbscan_cluster_selection_epsilon"`
	HDBSCANDoFlatClustering         bool    `json:"hdbscan_do_flat_clustering"`
	HDBSCANClusterFlatteningEpsilon float64 `json:"hdbscan_cluster_flattening_epsilon"`
}

// NewClusteringParams returns clustering params with default settings.
func NewClusteringParams(fs FilterSetParams) ClusteringParams {
	return ClusteringParams{
		FilterSet:                       fs,
		UMAPSeed:                        1,
		UMAPNNeighbors:                  30,
		UMAPMetric:                      MetricCosine,
		UMAPMinDist:                     0.0,
		HDBSCANMinClusterSize:           3,
		HDBSCANMinSamples:               3,
		HDBSCANClusterSelectionEpsilon:  0.0,
		HDBSCANDoFlatClustering:         false,
		HDBSCANClusterFlatteningEpsilon: 0.05,
	}
}

// UnmarshalJSON fills fields absent from the input with their defaults.
func (p *ClusteringParams) UnmarshalJSON(data []byte) error {
	type plain ClusteringParams
	out := plain(NewClusteringParams(FilterSetParams{}))
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = ClusteringParams(out)
	return nil
}

func (ClusteringParams) Kind() ResourceKind { return KindClustering }
func (ClusteringParams) typeName() string   { return "ClusteringParams" }
func (p ClusteringParams) Hash() string     { return hashParams(p) }

func (p ClusteringParams) Validate() error {
	if err := p.FilterSet.Validate(); err != nil {
		return err
	}
	switch p.UMAPMetric {
	case MetricCosine, MetricEuclidean, MetricManhattan:
	default:
		return fmt.Errorf("%w: unsupported metric %q", ErrInvalidInput, p.UMAPMetric)
	}
	switch {
	case p.UMAPNNeighbors < 2:
		return fmt.Errorf("%w: umap_n_neighbors must be at least 2", ErrInvalidInput)
	case p.UMAPMinDist < 0:
		return fmt.Errorf("%w: umap_min_dist must not be negative", ErrInvalidInput)
	case p.HDBSCANMinClusterSize < 2:
		return fmt.Errorf("%w: hdbscan_min_cluster_size must be at least 2", ErrInvalidInput)
	case p.HDBSCANMinSamples < 1:
		return fmt.Errorf("%w: hdbscan_min_samples must be at least 1", ErrInvalidInput)
	case p.HDBSCANClusterSelectionEpsilon < 0:
		return fmt.Errorf("%w: hdbscan_cluster_selection_epsilon must not be negative", ErrInvalidInput)
	case p.HDBSCANClusterFlatteningEpsilon < 0:
		return fmt.Errorf("%w: hdbscan_cluster_flattening_epsilon must not be negative", ErrInvalidInput)
	}
	return nil
}

// SummaryTermSource selects where candidate group terms come from.
type SummaryTermSource string

const (
	SummaryNamedEntities SummaryTermSource = "named entities"
	SummaryMeSHTerms     SummaryTermSource = "mesh terms"
)

// ArticleGroupParams configures the per-cluster summary of a clustering.
type ArticleGroupParams struct {
	Clustering   ClusteringParams  `json:"clustering"`
	NumTerms     int               `json:"num_terms"`
	SummaryTerms SummaryTermSource `json:"summary_terms"`
}

// NewArticleGroupParams returns group params with default settings.
func NewArticleGroupParams(c ClusteringParams) ArticleGroupParams {
	return ArticleGroupParams{
		Clustering:   c,
		NumTerms:     10,
		SummaryTerms: SummaryMeSHTerms,
	}
}

// UnmarshalJSON fills fields absent from the input with their defaults.
func (p *ArticleGroupParams) UnmarshalJSON(data []byte) error {
	type plain ArticleGroupParams
	out := plain(NewArticleGroupParams(NewClusteringParams(FilterSetParams{})))
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = ArticleGroupParams(out)
	return nil
}

func (ArticleGroupParams) Kind() ResourceKind { return KindArticleGroup }
func (ArticleGroupParams) typeName() string   { return "ArticleGroupParams" }
func (p ArticleGroupParams) Hash() string     { return hashParams(p) }

func (p ArticleGroupParams) Validate() error {
	if err := p.Clustering.Validate(); err != nil {
		return err
	}
	if p.NumTerms < 0 {
		return fmt.Errorf("%w: num_terms must not be negative", ErrInvalidInput)
	}
	switch p.SummaryTerms {
	case SummaryNamedEntities, SummaryMeSHTerms:
	default:
		return fmt.Errorf("%w: unsupported summary_terms %q", ErrInvalidInput, p.SummaryTerms)
	}
	return nil
}

// hashParams digests the type name together with the canonical JSON of
// every field. encoding/json emits struct fields in declaration order,
// so the encoding is stable across processes.
func hashParams(p Params) string {
	envelope := struct {
		Type   string `json:"type"`
		Params Params `json:"params"`
	}{Type: p.typeName(), Params: p}

	data, err := json.Marshal(envelope)
	if err != nil {
		// Params only hold strings, numbers and slices of numbers.
		panic(fmt.Sprintf("domain: marshal %s: %v", p.typeName(), err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DecodeParams parses params of the given kind from JSON, applying defaults.
func DecodeParams(kind ResourceKind, data []byte) (Params, error) {
	var (
		p   Params
		err error
	)
	switch kind {
	case KindFilterSet:
		var fs FilterSetParams
		err = json.Unmarshal(data, &fs)
		p = fs
	case KindClustering:
		var c ClusteringParams
		err = json.Unmarshal(data, &c)
		p = c
	case KindArticleGroup:
		var g ArticleGroupParams
		err = json.Unmarshal(data, &g)
		p = g
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedResource, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p, nil
}

// Chain returns the params a resource depends on followed by the params
// themselves, in creation order.
func Chain(p Params) []Params {
	switch v := p.(type) {
	case ClusteringParams:
		return []Params{v.FilterSet, v}
	case ArticleGroupParams:
		return []Params{v.Clustering.FilterSet, v.Clustering, v}
	default:
		return []Params{p}
	}
}

// ResultURL is the API path of the completed resource.
func ResultURL(p Params) string {
	return fmt.Sprintf("/literature/%s/%s", p.Kind(), p.Hash())
}

// ParseResultURL splits a path produced by ResultURL into kind and hash.
func ParseResultURL(url string) (ResourceKind, string, error) {
	rest, ok := strings.CutPrefix(url, "/literature/")
	if !ok {
		return "", "", fmt.Errorf("%w: result URL %q", ErrInvalidInput, url)
	}
	name, hash, ok := strings.Cut(rest, "/")
	if !ok || hash == "" || strings.Contains(hash, "/") {
		return "", "", fmt.Errorf("%w: result URL %q", ErrInvalidInput, url)
	}
	kind, err := ParseResourceKind(name)
	if err != nil {
		return "", "", err
	}
	return kind, hash, nil
}
