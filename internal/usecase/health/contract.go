package health

import "context"

// CorpusPinger checks corpus store availability.
type CorpusPinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks LLM provider availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}
