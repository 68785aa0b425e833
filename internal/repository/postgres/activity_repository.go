package postgres

import (
	"context"
	"fmt"
	"shopPulse/domain"
	"time"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{
		DB: db,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.UserActivity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create user activity: %w", err)
	}

	return nil
}

// FindRecentByUser returns the latest activities for one user, newest first.
func (r *ActivityRepository) FindRecentByUser(ctx context.Context, tenantID, userID string, limit int) ([]domain.UserActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var activities []domain.UserActivity
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("viewed_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activities: %w", err)
	}

	return activities, nil
}

// AggregateTrending groups raw views within the window per product with the
// engagement breakdown the trending score formula needs.
func (r *ActivityRepository) AggregateTrending(ctx context.Context, tenantID string, since time.Time) ([]domain.ActivityAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var aggregates []domain.ActivityAggregate
	err := r.DB.WithContext(ctx).Raw(`
		SELECT product_id,
		       COUNT(*) AS views,
		       COUNT(DISTINCT user_id) AS unique_users,
		       COUNT(DISTINCT session_id) AS unique_sessions,
		       SUM(CASE WHEN source = 'direct' THEN 1 ELSE 0 END) AS direct_views,
		       SUM(CASE WHEN source = 'search' THEN 1 ELSE 0 END) AS search_views
		FROM user_activities
		WHERE tenant_id = ? AND viewed_at >= ?
		GROUP BY product_id`,
		tenantID, since,
	).Scan(&aggregates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activities: %w", err)
	}

	return aggregates, nil
}

// AggregatePopular is the live popularity aggregation: views and distinct
// viewers per product within the window, most viewed first.
func (r *ActivityRepository) AggregatePopular(ctx context.Context, tenantID string, since time.Time, limit int) ([]domain.PopularProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.PopularProduct
	err := r.DB.WithContext(ctx).Raw(`
		SELECT product_id,
		       COUNT(*) AS views,
		       COUNT(DISTINCT user_id) AS unique_users
		FROM user_activities
		WHERE tenant_id = ? AND viewed_at >= ?
		GROUP BY product_id
		ORDER BY views DESC
		LIMIT ?`,
		tenantID, since, limit,
	).Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popular products: %w", err)
	}

	return products, nil
}

// DeleteOlderThan removes activities viewed before the cutoff and reports how
// many rows went away. Pure retention deletion, safe next to recorder writes.
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, tenantID string, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND viewed_at < ?", tenantID, before).
		Delete(&domain.UserActivity{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old activities: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DistinctTenants lists every tenant with recorded activity, for the
// scheduler's recalculation loop.
func (r *ActivityRepository) DistinctTenants(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var tenants []string
	err := r.DB.WithContext(ctx).
		Model(&domain.UserActivity{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, nil
}
