package synthesize

import "context"

// Generator invokes the generate capability: a full answer completion.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
