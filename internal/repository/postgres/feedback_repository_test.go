package postgres

import (
	"context"
	"testing"
	"time"

	"shopPulse/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFeedback(t *testing.T, repo *FeedbackRepository, tenantID, feedbackType, recoType string, rating int) {
	t.Helper()

	err := repo.Create(context.Background(), &domain.RecommendationFeedback{
		ID:                 uuid.NewString(),
		TenantID:           tenantID,
		UserID:             "u1",
		ProductID:          "p1",
		RecommendationType: recoType,
		FeedbackType:       feedbackType,
		Rating:             rating,
		Timestamp:          time.Now(),
	})
	require.NoError(t, err)
}

func TestFeedbackRepository_AggregateStats(t *testing.T) {
	repo := NewFeedbackRepository(openTestDB(t))

	seedFeedback(t, repo, "t1", "click", "similar", 0)
	seedFeedback(t, repo, "t1", "click", "similar", 0)
	seedFeedback(t, repo, "t1", "rating", "similar", 4)
	seedFeedback(t, repo, "t1", "rating", "similar", 5)
	seedFeedback(t, repo, "t1", "click", "trending", 0)
	// other tenant must not be counted
	seedFeedback(t, repo, "t2", "click", "similar", 0)

	stats, err := repo.AggregateStats(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	byKey := make(map[string]domain.FeedbackStat, len(stats))
	for _, s := range stats {
		byKey[s.FeedbackType+"/"+s.RecommendationType] = s
	}

	assert.Equal(t, int64(2), byKey["click/similar"].Count)
	assert.Equal(t, int64(1), byKey["click/trending"].Count)
	assert.Equal(t, int64(2), byKey["rating/similar"].Count)
	assert.InDelta(t, 4.5, byKey["rating/similar"].AvgRating, 1e-9)
}

func TestFeedbackRepository_AggregateStatsEmpty(t *testing.T) {
	repo := NewFeedbackRepository(openTestDB(t))

	stats, err := repo.AggregateStats(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, stats)
}
