package similarity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopPulse/domain"
	"shopPulse/pkg/logger"
	"shopPulse/pkg/metrics"

	"github.com/google/uuid"
)

// SimilarityRepository contract interface
type SimilarityRepository interface {
	FindBySource(ctx context.Context, tenantID, productID, similarityType string, minScore float64, limit int) ([]domain.SimilarityScore, error)
	SaveBatch(ctx context.Context, scores []domain.SimilarityScore) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.RecommendationFeedback) error
	AggregateStats(ctx context.Context, tenantID string) ([]domain.FeedbackStat, error)
}

// CatalogRepository resolves products and same-category candidate sets.
type CatalogRepository interface {
	GetProduct(ctx context.Context, tenantID, productID string) (*domain.CatalogProduct, error)
	GetProductsByCategory(ctx context.Context, tenantID, category string) ([]domain.CatalogProduct, error)
}

// Cache is the best-effort cache surface the engine needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

type SubmitFeedbackInput struct {
	TenantID           string
	UserID             string
	ProductID          string
	RecommendationType string
	FeedbackType       string
	Rating             int
	Comment            string
	Timestamp          time.Time
	Metadata           map[string]any
}

type SimilarityService struct {
	similarityRepo SimilarityRepository
	feedbackRepo   FeedbackRepository
	catalogRepo    CatalogRepository
	cache          Cache
	processor      FeedbackProcessor
	cfg            Config
}

func NewSimilarityService(
	similarityRepo SimilarityRepository,
	feedbackRepo FeedbackRepository,
	catalogRepo CatalogRepository,
	cache Cache,
	processor FeedbackProcessor,
	cfg Config,
) *SimilarityService {
	if processor == nil {
		processor = NoopFeedbackProcessor{}
	}

	return &SimilarityService{
		similarityRepo: similarityRepo,
		feedbackRepo:   feedbackRepo,
		catalogRepo:    catalogRepo,
		cache:          cache,
		processor:      processor,
		cfg:            cfg,
	}
}

func similarCacheKey(tenantID, productID, similarityType string, limit int) string {
	if similarityType == "" {
		similarityType = "any"
	}
	return fmt.Sprintf("similar:%s:%s:%s:%d", tenantID, productID, similarityType, limit)
}

// GetSimilarProducts serves precomputed similarity rows, falling back to the
// on-the-fly attribute calculation when none exist. The result shape is the
// same either way.
func (s *SimilarityService) GetSimilarProducts(ctx context.Context, tenantID, productID string, limit int, similarityType string, minScore float64) ([]domain.ProductRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if tenantID == "" {
		return nil, errors.New("tenant id is required")
	}
	if productID == "" {
		return nil, errors.New("product id is required")
	}
	if limit <= 0 {
		limit = 10
	}
	if minScore <= 0 {
		minScore = s.cfg.MinScore
	}

	key := similarCacheKey(tenantID, productID, similarityType, limit)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var recs []domain.ProductRecommendation
		if err := json.Unmarshal([]byte(raw), &recs); err == nil {
			metrics.CacheHitsTotal.WithLabelValues("similar").Inc()
			return recs, nil
		}
		logger.Warn("dropping malformed similarity cache entry", "key", key)
	}

	metrics.CacheMissesTotal.WithLabelValues("similar").Inc()

	rows, err := s.similarityRepo.FindBySource(ctx, tenantID, productID, similarityType, minScore, limit)
	if err != nil {
		logger.Error("failed to load similarity scores",
			"tenant_id", tenantID, "product_id", productID, "error", err)
		return nil, fmt.Errorf("failed to load similarity scores: %w", err)
	}

	var recs []domain.ProductRecommendation
	if len(rows) > 0 {
		recs = make([]domain.ProductRecommendation, 0, len(rows))
		for _, row := range rows {
			recs = append(recs, domain.ProductRecommendation{
				ProductID:          row.TargetProductID,
				Score:              row.Score,
				Reasons:            row.Reasons,
				RecommendationType: domain.RecommendationTypeSimilar,
				Metadata: map[string]any{
					"confidence":      row.Score,
					"source":          "precomputed",
					"similarity_type": row.SimilarityType,
					"features":        row.Features.Data(),
				},
			})
		}
	} else {
		recs, err = s.calculateOnTheFly(ctx, tenantID, productID, similarityType, minScore, limit)
		if err != nil {
			return nil, err
		}
	}

	if raw, err := json.Marshal(recs); err == nil {
		s.cache.Set(ctx, key, string(raw), s.cfg.CacheTTL)
	}

	return recs, nil
}

// SubmitFeedback persists one feedback row and returns its generated id.
// The processing hook runs after the write and can never fail the call.
func (s *SimilarityService) SubmitFeedback(ctx context.Context, input SubmitFeedbackInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	if input.TenantID == "" {
		return "", errors.New("tenant id is required")
	}
	if input.UserID == "" {
		return "", errors.New("user id is required")
	}
	if input.ProductID == "" {
		return "", errors.New("product id is required")
	}
	if input.FeedbackType == "" {
		return "", errors.New("feedback type is required")
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	feedback := domain.RecommendationFeedback{
		ID:                 uuid.NewString(),
		TenantID:           input.TenantID,
		UserID:             input.UserID,
		ProductID:          input.ProductID,
		RecommendationType: input.RecommendationType,
		FeedbackType:       input.FeedbackType,
		Rating:             input.Rating,
		Comment:            input.Comment,
		Timestamp:          timestamp,
		Metadata:           input.Metadata,
	}

	if err := s.feedbackRepo.Create(ctx, &feedback); err != nil {
		logger.Error("failed to store recommendation feedback",
			"tenant_id", input.TenantID, "product_id", input.ProductID, "error", err)
		return "", fmt.Errorf("failed to store recommendation feedback: %w", err)
	}

	metrics.FeedbackEventsTotal.WithLabelValues(input.FeedbackType).Inc()

	if err := s.processor.Process(ctx, feedback); err != nil {
		logger.Warn("feedback processing hook failed",
			"tenant_id", input.TenantID, "feedback_id", feedback.ID, "error", err)
	}

	return feedback.ID, nil
}

// GetRecommendationStats returns feedback counts and average ratings grouped
// by (feedback type, recommendation type).
func (s *SimilarityService) GetRecommendationStats(ctx context.Context, tenantID string) ([]domain.FeedbackStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if tenantID == "" {
		return nil, errors.New("tenant id is required")
	}

	stats, err := s.feedbackRepo.AggregateStats(ctx, tenantID)
	if err != nil {
		logger.Error("failed to aggregate feedback stats", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to aggregate feedback stats: %w", err)
	}

	return stats, nil
}
