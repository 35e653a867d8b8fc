package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. A degraded backend is reported, never
// fatal: the orchestrator tolerates unavailable collaborators.
type Service struct {
	corpus CorpusPinger
	llm    LLMChecker
}

// New creates a Service. Either dependency can be nil (component not configured).
func New(corpus CorpusPinger, llm LLMChecker) *Service {
	return &Service{corpus: corpus, llm: llm}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.corpus != nil {
		if err := s.corpus.Ping(ctx); err != nil {
			checks["corpus"] = CheckError
		} else {
			checks["corpus"] = CheckOK
		}
	}

	if s.llm != nil {
		if err := s.llm.HealthCheck(ctx); err != nil {
			checks["llm"] = CheckError
		} else {
			checks["llm"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
