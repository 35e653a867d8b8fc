package classify

import "context"

// Verdictor invokes the classify capability: a short deterministic completion.
type Verdictor interface {
	Classify(ctx context.Context, system, user string) (string, error)
}
