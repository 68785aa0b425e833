package trending

import (
	"fmt"
	"math"

	"shopPulse/domain"
)

// buildReasons produces the human-readable explanation strings for one
// trending row, from simple thresholds.
func (s *TrendingService) buildReasons(score domain.TrendingScore) []string {
	reasons := make([]string, 0, 3)

	if score.Views > s.cfg.PopularViews {
		reasons = append(reasons, fmt.Sprintf("Popular right now with %d recent views", score.Views))
	}
	if score.UniqueViews > s.cfg.WideReachViews {
		reasons = append(reasons, fmt.Sprintf("Viewed by %d different shoppers", score.UniqueViews))
	}
	if score.Category != "" {
		reasons = append(reasons, fmt.Sprintf("Trending in %s", score.Category))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Rising in popularity")
	}

	return reasons
}

// confidence is a capped linear combination of the views and unique-views
// ratios, so heavily and widely viewed products approach 1.0.
func (s *TrendingService) confidence(score domain.TrendingScore) float64 {
	c := 0.6*float64(score.Views)/s.cfg.ConfidenceViewsScale +
		0.4*float64(score.UniqueViews)/s.cfg.ConfidenceUniqueScale

	return math.Min(1.0, c)
}
