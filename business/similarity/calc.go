package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"shopPulse/domain"
	"shopPulse/pkg/logger"

	"gorm.io/datatypes"
)

// calculateOnTheFly synthesizes similarity results from catalog attributes
// when no precomputed rows exist: candidates are the source product's
// category peers, scored by weighted attribute overlap. The computed set is
// persisted best-effort so the next read hits the store.
func (s *SimilarityService) calculateOnTheFly(ctx context.Context, tenantID, productID, similarityType string, minScore float64, limit int) ([]domain.ProductRecommendation, error) {
	source, err := s.catalogRepo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		// A source the catalog cannot resolve yields no recommendations.
		logger.Debug("similarity source not resolvable",
			"tenant_id", tenantID, "product_id", productID, "error", err)
		return []domain.ProductRecommendation{}, nil
	}

	candidates, err := s.catalogRepo.GetProductsByCategory(ctx, tenantID, source.Category)
	if err != nil {
		logger.Error("failed to load similarity candidates",
			"tenant_id", tenantID, "category", source.Category, "error", err)
		return nil, fmt.Errorf("failed to load similarity candidates: %w", err)
	}

	type scoredCandidate struct {
		product  domain.CatalogProduct
		score    float64
		reasons  []string
		features domain.FeatureWeights
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == "" || candidate.ID == source.ID {
			continue
		}

		// One bad candidate must not abort the whole computation.
		score, reasons, features := scoreSimilarity(*source, candidate, s.cfg)
		if score < minScore {
			continue
		}

		if len(reasons) == 0 {
			reasons = []string{"Similar product attributes"}
		}

		scored = append(scored, scoredCandidate{
			product:  candidate,
			score:    score,
			reasons:  reasons,
			features: features,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	now := time.Now()
	rows := make([]domain.SimilarityScore, 0, len(scored))
	recs := make([]domain.ProductRecommendation, 0, len(scored))

	for _, sc := range scored {
		rows = append(rows, domain.SimilarityScore{
			TenantID:        tenantID,
			SourceProductID: source.ID,
			TargetProductID: sc.product.ID,
			SimilarityType:  similarityType,
			Score:           sc.score,
			Reasons:         sc.reasons,
			Features:        datatypes.NewJSONType(sc.features),
			CalculatedAt:    now,
			ExpiresAt:       now.Add(s.cfg.ScoreTTL),
		})

		recs = append(recs, domain.ProductRecommendation{
			ProductID:          sc.product.ID,
			Score:              sc.score,
			Reasons:            sc.reasons,
			RecommendationType: domain.RecommendationTypeSimilar,
			Metadata: map[string]any{
				"confidence":      sc.score,
				"source":          "on_the_fly",
				"similarity_type": similarityType,
				"features":        sc.features,
			},
		})
	}

	// Persisting the synthesized set is an optimization, not a requirement.
	if err := s.similarityRepo.SaveBatch(ctx, rows); err != nil {
		logger.Warn("failed to persist on-the-fly similarity scores",
			"tenant_id", tenantID, "product_id", productID, "error", err)
	}

	return recs, nil
}

// scoreSimilarity computes the weighted attribute overlap between two
// products, with one reason string per matching factor. The result is
// clamped to [0, 1].
func scoreSimilarity(a, b domain.CatalogProduct, cfg Config) (float64, []string, domain.FeatureWeights) {
	score := 0.0
	reasons := make([]string, 0, 4)
	features := make(domain.FeatureWeights)

	if a.Category != "" && a.Category == b.Category {
		score += cfg.CategoryWeight
		features["category"] = cfg.CategoryWeight
		reasons = append(reasons, fmt.Sprintf("Both are in the %s category", a.Category))
	}

	if a.Brand != "" && a.Brand == b.Brand {
		score += cfg.BrandWeight
		features["brand"] = cfg.BrandWeight
		reasons = append(reasons, fmt.Sprintf("Same brand: %s", a.Brand))
	}

	if a.Price > 0 && b.Price > 0 {
		proximity := 1.0 - math.Abs(a.Price-b.Price)/math.Max(a.Price, b.Price)
		if proximity > 0 {
			contribution := cfg.PriceWeight * proximity
			score += contribution
			features["price"] = contribution
			reasons = append(reasons, "Similar price range")
		}
	}

	if a.Style != "" && b.Style != "" && a.Style == b.Style {
		score += cfg.StyleWeight
		features["style"] = cfg.StyleWeight
		reasons = append(reasons, fmt.Sprintf("Matching %s style", a.Style))
	}

	if a.Material != "" && b.Material != "" && a.Material == b.Material {
		score += cfg.MaterialWeight
		features["material"] = cfg.MaterialWeight
		reasons = append(reasons, fmt.Sprintf("Both made of %s", a.Material))
	}

	if a.Color != "" && b.Color != "" && a.Color == b.Color {
		score += cfg.ColorWeight
		features["color"] = cfg.ColorWeight
		reasons = append(reasons, fmt.Sprintf("Available in %s", a.Color))
	}

	if score > 1.0 {
		score = 1.0
	}

	return score, reasons, features
}
