package trending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopPulse/domain"
	"shopPulse/pkg/logger"
	"shopPulse/pkg/metrics"
)

// TrendingRepository contract interface
type TrendingRepository interface {
	FindTop(ctx context.Context, tenantID, category, timeFrame string, since time.Time, limit int) ([]domain.TrendingScore, error)
	ReplaceForTimeFrame(ctx context.Context, tenantID, timeFrame string, scores []domain.TrendingScore) error
}

type ActivityRepository interface {
	AggregateTrending(ctx context.Context, tenantID string, since time.Time) ([]domain.ActivityAggregate, error)
}

type CatalogRepository interface {
	GetProduct(ctx context.Context, tenantID, productID string) (*domain.CatalogProduct, error)
}

// Cache is the best-effort cache surface trending needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	DeletePattern(ctx context.Context, pattern string)
}

type TrendingService struct {
	trendingRepo TrendingRepository
	activityRepo ActivityRepository
	catalogRepo  CatalogRepository
	cache        Cache
	cfg          Config
}

func NewTrendingService(
	trendingRepo TrendingRepository,
	activityRepo ActivityRepository,
	catalogRepo CatalogRepository,
	cache Cache,
	cfg Config,
) *TrendingService {
	return &TrendingService{
		trendingRepo: trendingRepo,
		activityRepo: activityRepo,
		catalogRepo:  catalogRepo,
		cache:        cache,
		cfg:          cfg,
	}
}

func trendingCacheKey(tenantID, category, timeFrame string, limit int) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("trending:%s:%s:%s:%d", tenantID, category, timeFrame, limit)
}

// GetTrendingProducts serves the trending list for a tenant, read-through
// cached for the configured TTL. Category is optional.
func (s *TrendingService) GetTrendingProducts(ctx context.Context, tenantID, category, timeFrame string, limit int) ([]domain.ProductRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if tenantID == "" {
		return nil, errors.New("tenant id is required")
	}
	if limit <= 0 {
		limit = 10
	}

	frame := domain.NormalizeTimeFrame(timeFrame)
	key := trendingCacheKey(tenantID, category, frame, limit)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var recs []domain.ProductRecommendation
		if err := json.Unmarshal([]byte(raw), &recs); err == nil {
			metrics.CacheHitsTotal.WithLabelValues("trending").Inc()
			return recs, nil
		}
		logger.Warn("dropping malformed trending cache entry", "key", key)
	}

	metrics.CacheMissesTotal.WithLabelValues("trending").Inc()

	since := time.Now().Add(-domain.TimeFrameDuration(frame))

	scores, err := s.trendingRepo.FindTop(ctx, tenantID, category, frame, since, limit)
	if err != nil {
		logger.Error("failed to load trending scores", "tenant_id", tenantID, "time_frame", frame, "error", err)
		return nil, fmt.Errorf("failed to load trending scores: %w", err)
	}

	recs := make([]domain.ProductRecommendation, 0, len(scores))
	for _, score := range scores {
		recs = append(recs, domain.ProductRecommendation{
			ProductID:          score.ProductID,
			Score:              score.Score,
			Reasons:            s.buildReasons(score),
			RecommendationType: domain.RecommendationTypeTrending,
			Metadata: map[string]any{
				"confidence":   s.confidence(score),
				"views":        score.Views,
				"unique_views": score.UniqueViews,
				"time_frame":   score.TimeFrame,
				"category":     score.Category,
			},
		})
	}

	if raw, err := json.Marshal(recs); err == nil {
		s.cache.Set(ctx, key, string(raw), s.cfg.CacheTTL)
	}

	return recs, nil
}

// CalculateTrendingScores recomputes the score set for every time frame of
// one tenant. Frames are independent; a failure in one does not stop the
// others. Concurrent recalculation of the same tenant is expected to be
// prevented by the caller (the scheduler runs tenants serially).
func (s *TrendingService) CalculateTrendingScores(ctx context.Context, tenantID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if tenantID == "" {
		return errors.New("tenant id is required")
	}

	started := time.Now()

	var errs []error
	for _, frame := range domain.TimeFrames {
		if err := s.calculateForTimeFrame(ctx, tenantID, frame); err != nil {
			logger.Error("trending recalculation failed",
				"tenant_id", tenantID, "time_frame", frame, "error", err)
			errs = append(errs, fmt.Errorf("time frame %s: %w", frame, err))
		}
	}

	metrics.TrendingRecalcDuration.Observe(time.Since(started).Seconds())

	if len(errs) > 0 {
		return fmt.Errorf("failed to recalculate trending scores: %w", errors.Join(errs...))
	}

	logger.Info("trending scores recalculated", "tenant_id", tenantID, "took", time.Since(started))

	return nil
}

func (s *TrendingService) calculateForTimeFrame(ctx context.Context, tenantID, frame string) error {
	window := domain.TimeFrameDuration(frame)
	now := time.Now()
	windowStart := now.Add(-window)

	aggregates, err := s.activityRepo.AggregateTrending(ctx, tenantID, windowStart)
	if err != nil {
		return fmt.Errorf("failed to aggregate activities: %w", err)
	}

	scores := make([]domain.TrendingScore, 0, len(aggregates))
	categories := make(map[string]string, len(aggregates))

	for _, agg := range aggregates {
		score := s.cfg.ViewWeight*float64(agg.Views) +
			s.cfg.UniqueUserWeight*float64(agg.UniqueUsers) +
			s.cfg.SessionWeight*float64(agg.UniqueSessions) +
			s.cfg.DirectWeight*float64(agg.DirectViews) +
			s.cfg.SearchWeight*float64(agg.SearchViews)

		scores = append(scores, domain.TrendingScore{
			TenantID:       tenantID,
			ProductID:      agg.ProductID,
			Category:       s.productCategory(ctx, tenantID, agg.ProductID, categories),
			Score:          score,
			Views:          agg.Views,
			UniqueViews:    agg.UniqueUsers,
			UniqueSessions: agg.UniqueSessions,
			TimeFrame:      frame,
			CalculatedAt:   now,
			// Grace period: stale rows survive until the next cycle has
			// clearly superseded them.
			ExpiresAt: now.Add(2 * window),
		})
	}

	if err := s.trendingRepo.ReplaceForTimeFrame(ctx, tenantID, frame, scores); err != nil {
		return err
	}

	// Every cached trending list for this tenant+frame is now stale.
	s.cache.DeletePattern(ctx, fmt.Sprintf("trending:%s:*:%s:*", tenantID, frame))

	return nil
}

// productCategory resolves a product's category through the catalog, with a
// per-run memo so each product is fetched once. Missing products keep an
// empty category rather than failing the recalculation.
func (s *TrendingService) productCategory(ctx context.Context, tenantID, productID string, memo map[string]string) string {
	if category, ok := memo[productID]; ok {
		return category
	}

	category := ""
	if product, err := s.catalogRepo.GetProduct(ctx, tenantID, productID); err == nil {
		category = product.Category
	} else {
		logger.Debug("category lookup failed", "tenant_id", tenantID, "product_id", productID, "error", err)
	}

	memo[productID] = category
	return category
}
