// Package prose extracts named entities from article text with the
// prose NLP library. Abstracts often carry inline markup such as <i> or
// <sup>, which is stripped before tagging.
package prose

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"

	"github.com/custodia-labs/litmapper/internal/core/ports/driven"
)

var _ driven.EntityExtractor = (*Extractor)(nil)

// Extractor implements driven.EntityExtractor.
type Extractor struct {
	// Labels restricts results to these entity labels, e.g. "GPE" or
	// "PERSON". Empty keeps every entity.
	Labels []string
}

// New creates an extractor that keeps every entity label.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the entities of each text in order of appearance.
func (e *Extractor) Extract(ctx context.Context, texts []string) ([][]string, error) {
	out := make([][]string, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ents, err := e.extract(text)
		if err != nil {
			return nil, fmt.Errorf("extracting entities from text %d: %w", i, err)
		}
		out[i] = ents
	}
	return out, nil
}

func (e *Extractor) extract(text string) ([]string, error) {
	plain, err := StripMarkup(text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(plain) == "" {
		return []string{}, nil
	}

	doc, err := prose.NewDocument(plain)
	if err != nil {
		return nil, err
	}

	ents := make([]string, 0)
	for _, ent := range doc.Entities() {
		if e.keep(ent.Label) {
			ents = append(ents, ent.Text)
		}
	}
	return ents, nil
}

func (e *Extractor) keep(label string) bool {
	if len(e.Labels) == 0 {
		return true
	}
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// StripMarkup returns the text content of an HTML fragment with entities
// decoded. Text without tags is returned unchanged.
func StripMarkup(text string) (string, error) {
	if !strings.ContainsAny(text, "<&") {
		return text, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}
	return doc.Text(), nil
}
