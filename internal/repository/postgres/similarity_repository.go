package postgres

import (
	"context"
	"fmt"
	"shopPulse/domain"
	"time"

	"gorm.io/gorm"
)

type SimilarityRepository struct {
	DB *gorm.DB
}

func NewSimilarityRepository(db *gorm.DB) *SimilarityRepository {
	return &SimilarityRepository{
		DB: db,
	}
}

// FindBySource returns unexpired similarity edges from one product, best
// first. SimilarityType is optional.
func (r *SimilarityRepository) FindBySource(ctx context.Context, tenantID, productID, similarityType string, minScore float64, limit int) ([]domain.SimilarityScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND source_product_id = ? AND score >= ? AND expires_at > ?",
			tenantID, productID, minScore, time.Now())

	if similarityType != "" {
		query = query.Where("similarity_type = ?", similarityType)
	}

	var scores []domain.SimilarityScore
	err := query.
		Order("score DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query similarity scores: %w", err)
	}

	return scores, nil
}

// SaveBatch persists a freshly computed similarity set.
func (r *SimilarityRepository) SaveBatch(ctx context.Context, scores []domain.SimilarityScore) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(scores) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(scores, 100).Error; err != nil {
		return fmt.Errorf("failed to save similarity scores: %w", err)
	}

	return nil
}

// DeleteExpired sweeps rows past their TTL.
func (r *SimilarityRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.SimilarityScore{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired similarity scores: %w", result.Error)
	}

	return result.RowsAffected, nil
}
