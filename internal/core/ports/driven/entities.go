package driven

import "context"

// EntityExtractor finds named entities in free text.
type EntityExtractor interface {
	// Extract returns the entity strings found in each text, in order of
	// appearance. The result has one entry per input text.
	Extract(ctx context.Context, texts []string) ([][]string, error)
}
