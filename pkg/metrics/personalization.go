package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the trending products handler
	TrendingRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "personalization_trending_latency_seconds",
		Help:    "Latency of trending product reads",
		Buckets: prometheus.DefBuckets,
	})

	// Latency of the similar products handler
	SimilarRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "personalization_similar_latency_seconds",
		Help:    "Latency of similar product reads",
		Buckets: prometheus.DefBuckets,
	})

	// Duration of one full trending recalculation per tenant
	TrendingRecalcDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "personalization_trending_recalc_seconds",
		Help:    "Duration of trending score recalculation per tenant",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	TrackedViewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_tracked_views_total",
			Help: "Count of tracked product views by source.",
		},
		[]string{"source"},
	)

	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_cache_hits_total",
			Help: "Read-through cache hits by area.",
		},
		[]string{"area"},
	)

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_cache_misses_total",
			Help: "Read-through cache misses by area.",
		},
		[]string{"area"},
	)

	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_feedback_events_total",
			Help: "Count of recommendation feedback events by feedback type.",
		},
		[]string{"feedback_type"},
	)
)

func Init() {
	prometheus.MustRegister(
		TrendingRequestLatency,
		SimilarRequestLatency,
		TrendingRecalcDuration,
		TrackedViewsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		FeedbackEventsTotal,
	)
}
