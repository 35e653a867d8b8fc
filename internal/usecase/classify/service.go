// Package classify decides whether a query is in scope for the restricted
// domain. The gate fails open: a broken classifier must never block a
// legitimate query, so any capability failure yields inDomain=true.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const systemPrompt = `You are a strict binary classifier.
Decide whether the user's question is about one of the allowed topics.
Answer with exactly one token: YES if the question is about an allowed topic, NO otherwise.
Do not explain.`

// Service classifies queries against a fixed allowed-topic set.
type Service struct {
	llm    Verdictor
	topics []string
	logger *zap.Logger
}

// New creates a classifier service.
func New(llm Verdictor, topics []string, logger *zap.Logger) *Service {
	return &Service{llm: llm, topics: topics, logger: logger}
}

// InDomain reports whether the query belongs to the allowed topic set.
// It never returns an error: classification failure and unrecognized verdicts
// both default to true (fail-open).
func (s *Service) InDomain(ctx context.Context, query string) bool {
	prompt := s.buildPrompt(query)

	raw, err := s.llm.Classify(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("Classifier unavailable, failing open", zap.Error(err))
		return true
	}

	verdict := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(verdict, "NO"):
		return false
	case strings.HasPrefix(verdict, "YES"):
		return true
	default:
		s.logger.Warn("Unrecognized classifier verdict, failing open", zap.String("verdict", raw))
		return true
	}
}

func (s *Service) buildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Allowed topics:\n")
	for _, t := range s.topics {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
