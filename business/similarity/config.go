package similarity

import "time"

// Config carries the attribute weights for the on-the-fly calculation and
// the cache/persistence tuning. Weights are tenant-independent tunables, not
// law; the similarity score itself is always clamped to [0, 1].
type Config struct {
	CategoryWeight float64
	BrandWeight    float64
	PriceWeight    float64
	StyleWeight    float64
	MaterialWeight float64
	ColorWeight    float64

	// MinScore is the floor below which candidates are discarded.
	MinScore float64

	CacheTTL time.Duration
	// ScoreTTL is the lifetime of persisted on-the-fly results.
	ScoreTTL time.Duration
}

const (
	defaultCategoryWeight = 0.30
	defaultBrandWeight    = 0.20
	defaultPriceWeight    = 0.20
	defaultStyleWeight    = 0.15
	defaultMaterialWeight = 0.10
	defaultColorWeight    = 0.05

	defaultMinScore = 0.1

	defaultCacheTTL = time.Hour
	defaultScoreTTL = 24 * time.Hour
)

func DefaultConfig() Config {
	return Config{
		CategoryWeight: defaultCategoryWeight,
		BrandWeight:    defaultBrandWeight,
		PriceWeight:    defaultPriceWeight,
		StyleWeight:    defaultStyleWeight,
		MaterialWeight: defaultMaterialWeight,
		ColorWeight:    defaultColorWeight,

		MinScore: defaultMinScore,

		CacheTTL: defaultCacheTTL,
		ScoreTTL: defaultScoreTTL,
	}
}
