// Package web adapts the live web-search provider to the orchestrator's
// uniform backend contract.
package web

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
	"github.com/kailas-cloud/askgate/internal/transport/tavily"
)

// searcher is the consumer interface over the provider client (ISP).
type searcher interface {
	Search(ctx context.Context, req tavily.Request) ([]tavily.Result, error)
}

// Adapter wraps the web-search provider behind the backend search contract.
// The web backend is domain-scoped: the orchestrator sends it both the
// restricted and the unrestricted query expressions.
type Adapter struct {
	client searcher
}

// New creates a web backend adapter.
func New(client searcher) *Adapter {
	return &Adapter{client: client}
}

// ID returns the backend identifier.
func (a *Adapter) ID() backend.ID { return backend.Web }

// Search runs one provider call and normalizes the hits. Results without a
// URL are dropped: URL is the merge identity key.
func (a *Adapter) Search(
	ctx context.Context, expr string, limit int, depth backend.Depth,
) ([]result.Result, error) {
	hits, err := a.client.Search(ctx, tavily.Request{
		Query:       expr,
		MaxResults:  limit,
		SearchDepth: string(depth),
	})
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	results := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		if h.URL == "" {
			continue
		}
		results = append(results, result.New(h.Title, h.URL, h.Content, h.Score, backend.Web))
	}
	return results, nil
}
