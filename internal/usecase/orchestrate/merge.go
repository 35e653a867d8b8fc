package orchestrate

import (
	"sort"

	"github.com/kailas-cloud/askgate/internal/domain/search/result"
)

// Merge combines per-backend result sets into one ranked, bounded evidence
// bundle: concatenate, de-duplicate by URL (first occurrence wins), sort
// descending by score keeping the original relative order on ties, truncate
// to limit. Deterministic inputs give deterministic output, and merging an
// already-merged bundle is a no-op.
func Merge(sets [][]result.Result, limit int) []result.Result {
	var merged []result.Result
	seen := make(map[string]struct{})

	for _, set := range sets {
		for _, r := range set {
			if _, ok := seen[r.URL()]; ok {
				continue
			}
			seen[r.URL()] = struct{}{}
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	return merged
}
