// Package plan turns a raw query into backend-specific search expressions.
// Passing the raw query straight through is always correct; keyword extraction
// is a quality refinement layered on top, never a correctness requirement.
package plan

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// maxKeywords bounds the refined restricted expression.
const maxKeywords = 5

const extractPrompt = `Extract the most salient search terms from the question.
Reply with at most 5 terms separated by spaces, nothing else.
Keep multi-word names intact.`

// Plan holds the search expressions for one query.
type Plan struct {
	// Restricted is scoped to the primary allowed domain via a site token.
	Restricted string
	// Unrestricted is the raw query text, unmodified.
	Unrestricted string
}

// Service builds search plans.
type Service struct {
	extractor     KeywordExtractor // nil disables LLM refinement
	primaryDomain string
	logger        *zap.Logger
}

// New creates a planner. extractor may be nil; the manual fallback then
// handles keyword extraction alone.
func New(extractor KeywordExtractor, primaryDomain string, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, primaryDomain: primaryDomain, logger: logger}
}

// Build returns the restricted and unrestricted expressions for a query.
// It never fails: refinement errors degrade to the raw query.
func (s *Service) Build(ctx context.Context, query string) Plan {
	query = strings.TrimSpace(query)

	terms := s.keywords(ctx, query)
	restrictedBody := query
	if len(terms) > 0 {
		restrictedBody = strings.Join(terms, " ")
	}

	return Plan{
		Restricted:   "site:" + s.primaryDomain + " " + restrictedBody,
		Unrestricted: query,
	}
}

// keywords returns ≤maxKeywords salient terms, or nil to keep the raw query.
func (s *Service) keywords(ctx context.Context, query string) []string {
	if s.extractor != nil {
		raw, err := s.extractor.Classify(ctx, extractPrompt, query)
		if err == nil {
			if terms := splitTerms(raw); len(terms) > 0 {
				return terms
			}
		} else {
			s.logger.Debug("Keyword extraction unavailable, using manual fallback", zap.Error(err))
		}
	}
	return manualKeywords(query)
}

// manualKeywords tokenizes the query and drops stop words.
func manualKeywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		if f == "" || isStopWord(f) {
			continue
		}
		terms = append(terms, f)
		if len(terms) == maxKeywords {
			break
		}
	}
	return terms
}

// splitTerms parses the extractor's space-separated term list.
func splitTerms(raw string) []string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) > maxKeywords {
		fields = fields[:maxKeywords]
	}
	return fields
}
