package trending

import "time"

// Config carries the score weights and cache tuning. The weights favor
// distinct engagement over raw volume and give direct/organic discovery a
// small boost so repeated views from one session cannot inflate a product.
type Config struct {
	ViewWeight       float64
	UniqueUserWeight float64
	SessionWeight    float64
	DirectWeight     float64
	SearchWeight     float64

	CacheTTL time.Duration

	// reason thresholds
	PopularViews   int64
	WideReachViews int64

	// confidence ratio denominators
	ConfidenceViewsScale  float64
	ConfidenceUniqueScale float64
}

const (
	defaultViewWeight       = 1.0
	defaultUniqueUserWeight = 2.0
	defaultSessionWeight    = 1.5
	defaultDirectWeight     = 0.5
	defaultSearchWeight     = 0.3

	defaultCacheTTL = 15 * time.Minute

	defaultPopularViews   = 100
	defaultWideReachViews = 50

	defaultConfidenceViewsScale  = 200.0
	defaultConfidenceUniqueScale = 100.0
)

func DefaultConfig() Config {
	return Config{
		ViewWeight:       defaultViewWeight,
		UniqueUserWeight: defaultUniqueUserWeight,
		SessionWeight:    defaultSessionWeight,
		DirectWeight:     defaultDirectWeight,
		SearchWeight:     defaultSearchWeight,

		CacheTTL: defaultCacheTTL,

		PopularViews:   defaultPopularViews,
		WideReachViews: defaultWideReachViews,

		ConfidenceViewsScale:  defaultConfidenceViewsScale,
		ConfidenceUniqueScale: defaultConfidenceUniqueScale,
	}
}
