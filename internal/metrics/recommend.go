package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation and indexing metrics.
var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation responses by policy, outcome and strategy",
		},
		[]string{"policy", "outcome", "strategy"},
	)

	RecommendationTierSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_tier_size",
			Help:      "Number of products per result tier",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"tier"},
	)

	SubstituteSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "substitute_searches_total",
			Help:      "Graph substitute searches triggered by an empty within-budget search",
		},
	)

	IndexBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_batches_total",
			Help:      "Index upload batches by status",
		},
		[]string{"status"},
	)

	IndexRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_retries_total",
			Help:      "Index upload retry attempts",
		},
	)

	IndexFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_fallbacks_total",
			Help:      "Items indexed with a zero vector, by space",
		},
		[]string{"space"},
	)
)

var (
	recMetricsRegistered   bool
	indexMetricsRegistered bool
)

// RegisterRecommendMetrics registers retrieval metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(RecommendationTierSize)
	prometheus.MustRegister(SubstituteSearchesTotal)
	recMetricsRegistered = true
}

// RegisterIndexMetrics registers indexing metrics.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexBatchesTotal)
	prometheus.MustRegister(IndexRetriesTotal)
	prometheus.MustRegister(IndexFallbacksTotal)
	indexMetricsRegistered = true
}
