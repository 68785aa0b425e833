package domain

// Recommendation sources.
const (
	RecommendationTypeTrending = "trending"
	RecommendationTypeSimilar  = "similar"
)

// ProductRecommendation is the unified recommendation shape returned to
// callers regardless of source (trending or similarity). Never persisted.
type ProductRecommendation struct {
	ProductID          string         `json:"product_id"`
	Score              float64        `json:"score"`
	Reasons            []string       `json:"reasons"`
	RecommendationType string         `json:"recommendation_type"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}
