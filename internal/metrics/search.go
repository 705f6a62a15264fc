package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	// SearchOutcomesTotal counts search outcomes by path ("semantic", "fallback", "empty").
	SearchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_outcomes_total",
			Help:      "Search outcomes by resolution path",
		},
		[]string{"path", "low_relevance"},
	)

	SearchBestScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_best_score",
			Help:      "Best semantic score per search",
			Buckets:   []float64{0.1, 0.2, 0.35, 0.5, 0.6, 0.75, 0.85, 0.95, 1},
		},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Uncached search computation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// SkippedCandidatesTotal counts products left out of semantic scoring.
	SkippedCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_skipped_candidates_total",
			Help:      "Catalog candidates skipped during semantic scoring",
		},
		[]string{"reason"}, // "no_embedding", "dimension_mismatch" or "non_finite"
	)

	// ResultCacheTotal counts result cache lookups ("hit", "miss", "shared").
	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_total",
			Help:      "Search result cache lookups",
		},
		[]string{"result"},
	)

	ResultCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "result_cache_entries",
			Help:      "Entries currently held by the search result cache",
		},
	)

	ChatRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Chat replies by intent and emotion",
		},
		[]string{"intent", "emotion"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search, cache and chat metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		SearchOutcomesTotal,
		SearchBestScore,
		SearchDuration,
		SkippedCandidatesTotal,
		ResultCacheTotal,
		ResultCacheEntries,
		ChatRepliesTotal,
	)
	searchMetricsRegistered = true
}
