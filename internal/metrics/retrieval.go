package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics: backend searches and LLM capability calls.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askgate",
			Name:      "backend_requests_total",
			Help:      "Total number of backend search calls",
		},
		[]string{"backend", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askgate",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend search call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	BackendResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askgate",
			Name:      "backend_results_total",
			Help:      "Search results returned by backends, before and after domain filtering",
		},
		[]string{"backend", "stage"}, // "raw" / "kept"
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askgate",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM capability calls",
		},
		[]string{"op", "status"}, // op: "classify" / "generate" / "embed"
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askgate",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM capability call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askgate",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"op", "type"}, // type: "prompt" / "completion" / "total"
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askgate",
			Name:      "embedding_cache_total",
			Help:      "Query embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once
// from the composition root.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(BackendResultsTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	retrievalMetricsRegistered = true
}
