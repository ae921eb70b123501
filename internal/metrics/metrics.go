// Package metrics defines the Prometheus collectors for the recommender
// core and the embedding pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	FitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forkcast",
			Name:      "fit_duration_seconds",
			Help:      "Scorer fit duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"scorer"},
	)

	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation queries",
		},
		[]string{"scorer", "status"},
	)

	RecommendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forkcast",
			Name:      "recommend_duration_seconds",
			Help:      "Recommendation query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"scorer"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forkcast",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Register registers all recommender and embedding collectors with the
// default registry. Called once from the composition root (no init()).
func Register() {
	prometheus.MustRegister(
		FitDuration,
		RecommendRequestsTotal,
		RecommendDuration,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingCacheTotal,
	)
}
