package orchestrate

import (
	"context"

	"github.com/kailas-cloud/askgate/internal/domain/answer"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
	"github.com/kailas-cloud/askgate/internal/usecase/plan"
)

// Classifier decides whether a query is in scope. Fail-open: it never errors.
type Classifier interface {
	InDomain(ctx context.Context, query string) bool
}

// Planner builds the search expressions for a query. It never errors.
type Planner interface {
	Build(ctx context.Context, query string) plan.Plan
}

// Synthesizer produces a grounded answer from an evidence bundle. It never
// errors: generation failure yields a fixed apology answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query, hint string, evidence []result.Result) answer.Answer
}

// Adapter is the uniform per-backend search contract. Implementations fail
// with an error on remote failure, timeout, or malformed payload; the
// orchestrator catches every such error locally.
type Adapter interface {
	Search(ctx context.Context, expr string, limit int, depth backend.Depth) ([]result.Result, error)
}
