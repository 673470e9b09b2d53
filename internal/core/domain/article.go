package domain

// Article is a literature record.
type Article struct {
	ArticleID       int64  `json:"article_id"`
	PMID            int64  `json:"pmid"`
	Title           string `json:"title"`
	Abstract        string `json:"abstract"`
	PublicationDate string `json:"publication_date,omitempty"`

	// Temporary marks user-supplied articles outside the curated corpus.
	// They never match full-text filters.
	Temporary bool `json:"temporary,omitempty"`
}

// Text is the searchable body used for entity extraction.
func (a Article) Text() string {
	if a.Abstract == "" {
		return a.Title
	}
	return a.Title + "\n" + a.Abstract
}

// ArticleRecord is an article together with its derived data, as loaded
// into an article store.
type ArticleRecord struct {
	Article
	Embedding []float32 `json:"embedding"`
	MeSHTerms []string  `json:"mesh_terms"`
}
