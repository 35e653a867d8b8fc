// Package synthesize produces a natural-language answer strictly grounded in
// a supplied evidence bundle.
package synthesize

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/domain/answer"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
)

// Apology is the fixed answer body used when the generate capability itself
// fails. Generation failure is always recoverable at this boundary.
const Apology = "Sorry, I ran into a problem while writing the answer. Please try again in a moment."

// Service synthesizes grounded answers.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a synthesizer service.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Synthesize runs one generate call over the evidence bundle and maps the raw
// output to a tagged Answer. It never returns an error: a failed generate call
// yields the fixed apology answer.
func (s *Service) Synthesize(
	ctx context.Context, query, hint string, evidence []result.Result,
) answer.Answer {
	raw, err := s.gen.Generate(ctx, systemPrompt, buildUserPrompt(query, hint, evidence))
	if err != nil {
		s.logger.Warn("Generation failed, returning apology answer", zap.Error(err))
		return answer.Answered(Apology, nil)
	}

	switch strings.TrimSpace(raw) {
	case tokenDenied:
		return answer.NewDenied()
	case tokenNotFound:
		// Evidence is still surfaced even when it did not answer the question.
		return answer.NewNotFound(answer.Project(evidence))
	default:
		return answer.Answered(strings.TrimSpace(raw), answer.Project(evidence))
	}
}
