package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shopPulse/domain"
	"shopPulse/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func seedView(t *testing.T, repo *ActivityRepository, tenantID, userID, productID, sessionID, source string, viewedAt time.Time) {
	t.Helper()

	err := repo.Create(context.Background(), &domain.UserActivity{
		ID:        fmt.Sprintf("%s-%s-%s-%d", tenantID, userID, productID, viewedAt.UnixNano()),
		TenantID:  tenantID,
		UserID:    userID,
		ProductID: productID,
		SessionID: sessionID,
		Source:    source,
		ViewedAt:  viewedAt,
	})
	require.NoError(t, err)
}

func TestActivityRepository_FindRecentByUser(t *testing.T) {
	repo := NewActivityRepository(openTestDB(t))
	now := time.Now()

	seedView(t, repo, "t1", "u1", "p1", "s1", "direct", now.Add(-2*time.Hour))
	seedView(t, repo, "t1", "u1", "p2", "s1", "direct", now.Add(-time.Hour))
	seedView(t, repo, "t1", "u1", "p3", "s1", "direct", now)
	// other tenant and other user must not leak in
	seedView(t, repo, "t2", "u1", "px", "s9", "direct", now)
	seedView(t, repo, "t1", "u2", "py", "s8", "direct", now)

	activities, err := repo.FindRecentByUser(context.Background(), "t1", "u1", 2)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, "p3", activities[0].ProductID)
	assert.Equal(t, "p2", activities[1].ProductID)
}

func TestActivityRepository_AggregateTrending(t *testing.T) {
	repo := NewActivityRepository(openTestDB(t))
	now := time.Now()

	// p1: 3 views, 2 users, 2 sessions, 1 direct, 1 search
	seedView(t, repo, "t1", "u1", "p1", "s1", "direct", now.Add(-time.Minute))
	seedView(t, repo, "t1", "u1", "p1", "s1", "search", now.Add(-2*time.Minute))
	seedView(t, repo, "t1", "u2", "p1", "s2", "recommendation", now.Add(-3*time.Minute))
	// outside the window
	seedView(t, repo, "t1", "u3", "p1", "s3", "direct", now.Add(-48*time.Hour))
	// other tenant
	seedView(t, repo, "t2", "u1", "p1", "s1", "direct", now)

	aggregates, err := repo.AggregateTrending(context.Background(), "t1", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, aggregates, 1)

	agg := aggregates[0]
	assert.Equal(t, "p1", agg.ProductID)
	assert.Equal(t, int64(3), agg.Views)
	assert.Equal(t, int64(2), agg.UniqueUsers)
	assert.Equal(t, int64(2), agg.UniqueSessions)
	assert.Equal(t, int64(1), agg.DirectViews)
	assert.Equal(t, int64(1), agg.SearchViews)
}

func TestActivityRepository_AggregatePopular(t *testing.T) {
	repo := NewActivityRepository(openTestDB(t))
	now := time.Now()

	for i := 0; i < 3; i++ {
		seedView(t, repo, "t1", fmt.Sprintf("u%d", i), "p1", fmt.Sprintf("s%d", i), "direct", now.Add(-time.Duration(i)*time.Minute))
	}
	seedView(t, repo, "t1", "u1", "p2", "s1", "direct", now)

	products, err := repo.AggregatePopular(context.Background(), "t1", now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ProductID)
	assert.Equal(t, int64(3), products[0].Views)
	assert.Equal(t, int64(3), products[0].UniqueUsers)
	assert.Equal(t, "p2", products[1].ProductID)
}

func TestActivityRepository_DeleteOlderThan(t *testing.T) {
	repo := NewActivityRepository(openTestDB(t))
	now := time.Now()

	seedView(t, repo, "t1", "u1", "p1", "s1", "direct", now.AddDate(0, 0, -40))
	seedView(t, repo, "t1", "u1", "p2", "s1", "direct", now)
	seedView(t, repo, "t2", "u1", "p3", "s1", "direct", now.AddDate(0, 0, -40))

	removed, err := repo.DeleteOlderThan(context.Background(), "t1", now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// repeat run removes nothing
	removed, err = repo.DeleteOlderThan(context.Background(), "t1", now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Zero(t, removed)

	// the other tenant's old row is untouched
	remaining, err := repo.FindRecentByUser(context.Background(), "t2", "u1", 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestActivityRepository_DistinctTenants(t *testing.T) {
	repo := NewActivityRepository(openTestDB(t))
	now := time.Now()

	seedView(t, repo, "t1", "u1", "p1", "s1", "direct", now)
	seedView(t, repo, "t1", "u2", "p2", "s2", "direct", now)
	seedView(t, repo, "t2", "u1", "p1", "s1", "direct", now)

	tenants, err := repo.DistinctTenants(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, tenants)
}
