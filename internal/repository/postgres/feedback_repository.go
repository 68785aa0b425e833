package postgres

import (
	"context"
	"fmt"
	"shopPulse/domain"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{
		DB: db,
	}
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.RecommendationFeedback) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create recommendation feedback: %w", err)
	}

	return nil
}

// AggregateStats groups feedback by (feedback type, recommendation type)
// with count and average rating per group.
func (r *FeedbackRepository) AggregateStats(ctx context.Context, tenantID string) ([]domain.FeedbackStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var stats []domain.FeedbackStat
	err := r.DB.WithContext(ctx).Raw(`
		SELECT feedback_type,
		       recommendation_type,
		       COUNT(*) AS count,
		       COALESCE(AVG(rating), 0) AS avg_rating
		FROM recommendation_feedback
		WHERE tenant_id = ?
		GROUP BY feedback_type, recommendation_type
		ORDER BY feedback_type, recommendation_type`,
		tenantID,
	).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback stats: %w", err)
	}

	return stats, nil
}
