package plan

import "context"

// KeywordExtractor invokes the classify capability to pull salient terms from
// a query. Optional: extraction failure falls back to manual tokenization.
type KeywordExtractor interface {
	Classify(ctx context.Context, system, user string) (string, error)
}
