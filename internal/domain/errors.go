package domain

import "errors"

var (
	// ErrBackendUnavailable signals a backend network or server failure.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrBackendBadPayload signals a malformed backend response.
	ErrBackendBadPayload = errors.New("backend returned malformed payload")
	// ErrBackendUnauthorized signals rejected backend credentials.
	ErrBackendUnauthorized = errors.New("backend rejected credentials")
	// ErrBackendRateLimited signals a backend rate limit hit.
	ErrBackendRateLimited = errors.New("backend rate limited")
	// ErrClassificationFailed signals a classify capability failure.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrGenerationFailed signals a generate capability failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
