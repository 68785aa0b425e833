package postgres

import (
	"context"
	"fmt"
	"shopPulse/domain"
	"time"

	"gorm.io/gorm"
)

type TrendingRepository struct {
	DB *gorm.DB
}

func NewTrendingRepository(db *gorm.DB) *TrendingRepository {
	return &TrendingRepository{
		DB: db,
	}
}

// FindTop returns the highest-scored rows for a tenant and time frame,
// restricted to rows calculated within the frame's window so a stale set is
// never served. Category is optional.
func (r *TrendingRepository) FindTop(ctx context.Context, tenantID, category, timeFrame string, since time.Time, limit int) ([]domain.TrendingScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND time_frame = ? AND calculated_at >= ?", tenantID, timeFrame, since)

	if category != "" {
		query = query.Where("category = ?", category)
	}

	var scores []domain.TrendingScore
	err := query.
		Order("score DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query trending scores: %w", err)
	}

	return scores, nil
}

// ReplaceForTimeFrame swaps the score set for (tenant, time frame) in one
// transaction: the old set goes away, the fresh set goes in. Readers never
// observe the half-replaced state.
func (r *TrendingRepository) ReplaceForTimeFrame(ctx context.Context, tenantID, timeFrame string, scores []domain.TrendingScore) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("tenant_id = ? AND time_frame = ?", tenantID, timeFrame).
			Delete(&domain.TrendingScore{}).Error; err != nil {
			return fmt.Errorf("failed to delete stale trending scores: %w", err)
		}

		if len(scores) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(scores, 100).Error; err != nil {
			return fmt.Errorf("failed to insert trending scores: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace trending scores: %w", err)
	}

	return nil
}

// DeleteExpired sweeps rows past their grace period.
func (r *TrendingRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.TrendingScore{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired trending scores: %w", result.Error)
	}

	return result.RowsAffected, nil
}
