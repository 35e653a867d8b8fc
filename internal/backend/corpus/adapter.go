// Package corpus adapts the Redis vector index holding the curated document
// corpus to the orchestrator's uniform backend contract.
package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/db"
	"github.com/kailas-cloud/askgate/internal/domain"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
)

// store is the consumer interface for corpus search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Adapter wraps the corpus vector index behind the backend search contract.
// The corpus is scoped by construction: it receives the raw query expression
// and its results are never domain-filtered.
type Adapter struct {
	store  store
	embed  domain.Embedder
	index  string
	logger *zap.Logger
}

// New creates a corpus backend adapter.
func New(s store, embed domain.Embedder, index string, logger *zap.Logger) *Adapter {
	return &Adapter{store: s, embed: embed, index: index, logger: logger}
}

// ID returns the backend identifier.
func (a *Adapter) ID() backend.ID { return backend.Corpus }

// Search embeds the query expression and runs a KNN search over the corpus
// index. The depth hint is ignored: the corpus has a single search mode.
func (a *Adapter) Search(
	ctx context.Context, expr string, limit int, _ backend.Depth,
) ([]result.Result, error) {
	embResult, err := a.embed.Embed(ctx, expr)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrBackendUnavailable, err)
	}

	sr, err := a.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    a.index,
		Vector:       embResult.Embedding,
		K:            limit,
		ReturnFields: []string{"title", "url", "content", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w: %w", a.index, domain.ErrBackendUnavailable, err)
	}

	return parseEntries(sr, a.logger), nil
}

// parseEntries converts db entries into normalized results. Entries without a
// URL are dropped: URL is the merge identity key.
func parseEntries(sr *db.SearchResult, logger *zap.Logger) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		url := entry.Fields["url"]
		if url == "" {
			logger.Warn("Corpus document without url, dropped", zap.String("key", entry.Key))
			continue
		}
		results = append(results, result.New(
			entry.Fields["title"], url, entry.Fields["content"], entry.Score, backend.Corpus,
		))
	}
	return results
}
