package activity

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

const (
	recentlyViewedMax       = 50
	recentlyViewedTTL       = 24 * time.Hour
	recentlyViewedRefillTTL = 5 * time.Minute
	viewCounterTTL          = 7 * 24 * time.Hour
	defaultRetentionDays    = 30
)

// ActivityRepository contract interface
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.UserActivity) error
	FindRecentByUser(ctx context.Context, tenantID, userID string, limit int) ([]domain.UserActivity, error)
	AggregatePopular(ctx context.Context, tenantID string, since time.Time, limit int) ([]domain.PopularProduct, error)
	DeleteOlderThan(ctx context.Context, tenantID string, before time.Time) (int64, error)
}

// Cache is the best-effort cache surface the recorder needs. Implementations
// never return errors; failed reads look like misses.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	ListPush(ctx context.Context, key, value string)
	ListRange(ctx context.Context, key string, start, stop int64) []string
	ListTrim(ctx context.Context, key string, start, stop int64)
	Increment(ctx context.Context, key string) int64
	Expire(ctx context.Context, key string, ttl time.Duration)
	TTL(ctx context.Context, key string) (time.Duration, bool)
}

// CatalogRepository resolves product details from the platform catalog.
type CatalogRepository interface {
	GetProduct(ctx context.Context, tenantID, productID string) (*domain.CatalogProduct, error)
}

type TrackProductViewInput struct {
	TenantID   string
	UserID     string
	ProductID  string
	SessionID  string
	DeviceType string
	Source     string
	ViewedAt   time.Time
	Duration   int
	Metadata   map[string]any
}

type ActivityService struct {
	activityRepo ActivityRepository
	cache        Cache
	catalogRepo  CatalogRepository
}

func NewActivityService(activityRepo ActivityRepository, cache Cache, catalogRepo CatalogRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		cache:        cache,
		catalogRepo:  catalogRepo,
	}
}

func recentlyViewedKey(tenantID, userID string) string {
	return fmt.Sprintf("recent:%s:%s", tenantID, userID)
}

func viewCounterKey(tenantID, productID string) string {
	return fmt.Sprintf("views:%s:%s", tenantID, productID)
}

// TrackProductView writes the durable activity row and then maintains the
// derived cache structures. Only the durable write can fail the call; the
// cache steps are skipped silently when the cache is down.
func (s *ActivityService) TrackProductView(ctx context.Context, input TrackProductViewInput) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if input.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if input.UserID == "" {
		return errors.New("user id is required")
	}
	if input.ProductID == "" {
		return errors.New("product id is required")
	}

	viewedAt := input.ViewedAt
	if viewedAt.IsZero() {
		viewedAt = time.Now()
	}

	entry := &domain.UserActivity{
		ID:         uuid.NewString(),
		TenantID:   input.TenantID,
		UserID:     input.UserID,
		ProductID:  input.ProductID,
		SessionID:  input.SessionID,
		DeviceType: input.DeviceType,
		Source:     input.Source,
		ViewedAt:   viewedAt,
		Duration:   input.Duration,
		Metadata:   input.Metadata,
	}

	if err := s.activityRepo.Create(ctx, entry); err != nil {
		logger.Error("failed to record product view",
			"tenant_id", input.TenantID, "product_id", input.ProductID, "error", err)
		return fmt.Errorf("failed to record product view: %w", err)
	}

	metrics.TrackedViewsTotal.WithLabelValues(input.Source).Inc()

	// Derived cache structures; best-effort from here on.
	s.pushRecentlyViewed(ctx, entry)
	s.bumpViewCounter(ctx, input.TenantID, input.ProductID)

	return nil
}

func (s *ActivityService) pushRecentlyViewed(ctx context.Context, entry *domain.UserActivity) {
	item := domain.RecentlyViewedItem{
		ProductID:  entry.ProductID,
		ViewedAt:   entry.ViewedAt,
		DeviceType: entry.DeviceType,
		Source:     entry.Source,
	}

	raw, err := json.Marshal(item)
	if err != nil {
		logger.Warn("failed to marshal recently viewed entry", "error", err)
		return
	}

	key := recentlyViewedKey(entry.TenantID, entry.UserID)
	s.cache.ListPush(ctx, key, string(raw))
	s.cache.ListTrim(ctx, key, 0, recentlyViewedMax-1)
	s.cache.Expire(ctx, key, recentlyViewedTTL)
}

func (s *ActivityService) bumpViewCounter(ctx context.Context, tenantID, productID string) {
	key := viewCounterKey(tenantID, productID)
	s.cache.Increment(ctx, key)

	// Only stamp an expiry on a counter that has none, so the window is not
	// extended by every view.
	if _, hasExpiry := s.cache.TTL(ctx, key); !hasExpiry {
		s.cache.Expire(ctx, key, viewCounterTTL)
	}
}

// GetRecentlyViewed reads through the per-user cache list. On a miss it
// rebuilds the list from durable storage with products resolved through the
// catalog; activities whose product is gone are dropped.
func (s *ActivityService) GetRecentlyViewed(ctx context.Context, tenantID, userID string, limit int) ([]domain.RecentlyViewedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}
	if limit > recentlyViewedMax {
		limit = recentlyViewedMax
	}

	key := recentlyViewedKey(tenantID, userID)

	if raw := s.cache.ListRange(ctx, key, 0, int64(limit)-1); len(raw) > 0 {
		items := make([]domain.RecentlyViewedItem, 0, len(raw))
		for _, entry := range raw {
			var item domain.RecentlyViewedItem
			if err := json.Unmarshal([]byte(entry), &item); err != nil {
				logger.Warn("dropping malformed recently viewed entry", "tenant_id", tenantID, "error", err)
				continue
			}
			items = append(items, item)
		}

		if len(items) > 0 {
			metrics.CacheHitsTotal.WithLabelValues("recently_viewed").Inc()
			return items, nil
		}
	}

	metrics.CacheMissesTotal.WithLabelValues("recently_viewed").Inc()

	activities, err := s.activityRepo.FindRecentByUser(ctx, tenantID, userID, limit)
	if err != nil {
		logger.Error("failed to load recent activities",
			"tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load recent activities: %w", err)
	}

	items := make([]domain.RecentlyViewedItem, 0, len(activities))
	for _, act := range activities {
		product, err := s.catalogRepo.GetProduct(ctx, tenantID, act.ProductID)
		if err != nil {
			// Unresolvable products are excluded, not an error.
			logger.Debug("skipping unresolvable product",
				"tenant_id", tenantID, "product_id", act.ProductID, "error", err)
			continue
		}

		items = append(items, domain.RecentlyViewedItem{
			ProductID:  act.ProductID,
			ViewedAt:   act.ViewedAt,
			DeviceType: act.DeviceType,
			Source:     act.Source,
			Product:    product,
		})
	}

	s.repopulateRecentlyViewed(ctx, key, items)

	return items, nil
}

func (s *ActivityService) repopulateRecentlyViewed(ctx context.Context, key string, items []domain.RecentlyViewedItem) {
	if len(items) == 0 {
		return
	}

	s.cache.Delete(ctx, key)

	// Push oldest first so the newest entry ends up at the head.
	for i := len(items) - 1; i >= 0; i-- {
		raw, err := json.Marshal(items[i])
		if err != nil {
			continue
		}
		s.cache.ListPush(ctx, key, string(raw))
	}

	s.cache.Expire(ctx, key, recentlyViewedRefillTTL)
}

// GetPopularProducts aggregates raw activity within the window straight from
// durable storage. Intentionally uncached: it is read far less often than
// trending.
func (s *ActivityService) GetPopularProducts(ctx context.Context, tenantID string, limit int, timeFrame string) ([]domain.PopularProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}

	since := time.Now().Add(-domain.TimeFrameDuration(domain.NormalizeTimeFrame(timeFrame)))

	products, err := s.activityRepo.AggregatePopular(ctx, tenantID, since, limit)
	if err != nil {
		logger.Error("failed to aggregate popular products", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to aggregate popular products: %w", err)
	}

	return products, nil
}

// CleanupOldActivities removes activities older than daysOld days and
// reports the count removed.
func (s *ActivityService) CleanupOldActivities(ctx context.Context, tenantID string, daysOld int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	if daysOld <= 0 {
		daysOld = defaultRetentionDays
	}

	before := time.Now().AddDate(0, 0, -daysOld)

	removed, err := s.activityRepo.DeleteOlderThan(ctx, tenantID, before)
	if err != nil {
		logger.Error("failed to clean up old activities", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to clean up old activities: %w", err)
	}

	if removed > 0 {
		logger.Info("removed old activities", "tenant_id", tenantID, "count", removed, "days_old", daysOld)
	}

	return removed, nil
}
