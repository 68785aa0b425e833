package trending

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shopPulse/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrendingRepo struct {
	rows     []domain.TrendingScore
	replaced map[string][]domain.TrendingScore
	findErr  error
	replErr  map[string]error

	findCalls int
}

func newFakeTrendingRepo() *fakeTrendingRepo {
	return &fakeTrendingRepo{
		replaced: make(map[string][]domain.TrendingScore),
		replErr:  make(map[string]error),
	}
}

func (f *fakeTrendingRepo) FindTop(ctx context.Context, tenantID, category, timeFrame string, since time.Time, limit int) ([]domain.TrendingScore, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}

	var out []domain.TrendingScore
	for _, row := range f.rows {
		if row.TenantID != tenantID || row.TimeFrame != timeFrame {
			continue
		}
		if category != "" && row.Category != category {
			continue
		}
		out = append(out, row)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTrendingRepo) ReplaceForTimeFrame(ctx context.Context, tenantID, timeFrame string, scores []domain.TrendingScore) error {
	if err := f.replErr[timeFrame]; err != nil {
		return err
	}
	f.replaced[timeFrame] = scores
	return nil
}

type fakeActivityRepo struct {
	aggregates []domain.ActivityAggregate
}

func (f *fakeActivityRepo) AggregateTrending(ctx context.Context, tenantID string, since time.Time) ([]domain.ActivityAggregate, error) {
	return f.aggregates, nil
}

type fakeCatalog struct {
	categories map[string]string
	calls      int
}

func (f *fakeCatalog) GetProduct(ctx context.Context, tenantID, productID string) (*domain.CatalogProduct, error) {
	f.calls++
	return &domain.CatalogProduct{ID: productID, Category: f.categories[productID]}, nil
}

type fakeCache struct {
	data            map[string]string
	sets            map[string]string
	deletedPatterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: make(map[string]string),
		sets: make(map[string]string),
	}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	val, ok := f.data[key]
	return val, ok
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	f.sets[key] = value
	f.data[key] = value
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) {
	f.deletedPatterns = append(f.deletedPatterns, pattern)
}

func newService(repo *fakeTrendingRepo, activities *fakeActivityRepo, catalog *fakeCatalog, cache *fakeCache) *TrendingService {
	return NewTrendingService(repo, activities, catalog, cache, DefaultConfig())
}

func TestGetTrendingProducts_MapsStoredScores(t *testing.T) {
	repo := newFakeTrendingRepo()
	repo.rows = []domain.TrendingScore{
		{
			TenantID:     "t1",
			ProductID:    "p1",
			Category:     "shoes",
			Score:        120.5,
			Views:        150,
			UniqueViews:  60,
			TimeFrame:    domain.TimeFrameDay,
			CalculatedAt: time.Now(),
		},
	}
	cache := newFakeCache()
	svc := newService(repo, &fakeActivityRepo{}, &fakeCatalog{}, cache)

	recs, err := svc.GetTrendingProducts(context.Background(), "t1", "", "day", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "p1", recs[0].ProductID)
	assert.Equal(t, domain.RecommendationTypeTrending, recs[0].RecommendationType)
	assert.InDelta(t, 120.5, recs[0].Score, 1e-9)
	assert.Contains(t, recs[0].Reasons, "Popular right now with 150 recent views")
	assert.Contains(t, recs[0].Reasons, "Viewed by 60 different shoppers")
	assert.Contains(t, recs[0].Reasons, "Trending in shoes")

	// result cached for the next read
	assert.Contains(t, cache.sets, "trending:t1:all:day:10")
}

func TestGetTrendingProducts_CacheHitSkipsStore(t *testing.T) {
	cached := []domain.ProductRecommendation{{ProductID: "p9", Score: 3.2, RecommendationType: domain.RecommendationTypeTrending}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	repo := newFakeTrendingRepo()
	cache := newFakeCache()
	cache.data["trending:t1:all:day:10"] = string(raw)

	svc := newService(repo, &fakeActivityRepo{}, &fakeCatalog{}, cache)

	recs, err := svc.GetTrendingProducts(context.Background(), "t1", "", "day", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p9", recs[0].ProductID)
	assert.Zero(t, repo.findCalls)
}

func TestGetTrendingProducts_UnknownFrameDefaultsToWeek(t *testing.T) {
	repo := newFakeTrendingRepo()
	repo.rows = []domain.TrendingScore{
		{TenantID: "t1", ProductID: "p1", Score: 1, TimeFrame: domain.TimeFrameWeek, CalculatedAt: time.Now()},
	}
	svc := newService(repo, &fakeActivityRepo{}, &fakeCatalog{}, newFakeCache())

	recs, err := svc.GetTrendingProducts(context.Background(), "t1", "", "fortnight", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.TimeFrameWeek, recs[0].Metadata["time_frame"])
}

func TestGetTrendingProducts_RequiresTenant(t *testing.T) {
	svc := newService(newFakeTrendingRepo(), &fakeActivityRepo{}, &fakeCatalog{}, newFakeCache())

	_, err := svc.GetTrendingProducts(context.Background(), "", "", "day", 10)
	assert.Error(t, err)
}

func TestCalculateTrendingScores_Formula(t *testing.T) {
	repo := newFakeTrendingRepo()
	activities := &fakeActivityRepo{
		aggregates: []domain.ActivityAggregate{
			{ProductID: "p1", Views: 5, UniqueUsers: 5, UniqueSessions: 5, DirectViews: 3, SearchViews: 2},
		},
	}
	catalog := &fakeCatalog{categories: map[string]string{"p1": "shoes"}}
	cache := newFakeCache()
	svc := newService(repo, activities, catalog, cache)

	err := svc.CalculateTrendingScores(context.Background(), "t1")
	require.NoError(t, err)

	// every frame gets its own replaced set
	require.Len(t, repo.replaced, len(domain.TimeFrames))

	day := repo.replaced[domain.TimeFrameDay]
	require.Len(t, day, 1)

	// 5*1 + 5*2 + 5*1.5 + 3*0.5 + 2*0.3
	assert.InDelta(t, 24.6, day[0].Score, 1e-9)
	assert.Equal(t, "shoes", day[0].Category)
	assert.Equal(t, "t1", day[0].TenantID)
	assert.True(t, day[0].ExpiresAt.After(day[0].CalculatedAt))

	// cached lists for the tenant are invalidated per frame
	assert.Len(t, cache.deletedPatterns, len(domain.TimeFrames))
	assert.Contains(t, cache.deletedPatterns, "trending:t1:*:day:*")
}

func TestCalculateTrendingScores_CatalogFetchedOncePerProduct(t *testing.T) {
	repo := newFakeTrendingRepo()
	activities := &fakeActivityRepo{
		aggregates: []domain.ActivityAggregate{
			{ProductID: "p1", Views: 1},
			{ProductID: "p2", Views: 1},
		},
	}
	catalog := &fakeCatalog{categories: map[string]string{"p1": "a", "p2": "b"}}
	svc := newService(repo, activities, catalog, newFakeCache())

	err := svc.CalculateTrendingScores(context.Background(), "t1")
	require.NoError(t, err)

	// one lookup per product per frame, memoized within a frame
	assert.Equal(t, 2*len(domain.TimeFrames), catalog.calls)
}

func TestCalculateTrendingScores_EmptyWindowClearsSet(t *testing.T) {
	repo := newFakeTrendingRepo()
	svc := newService(repo, &fakeActivityRepo{}, &fakeCatalog{}, newFakeCache())

	err := svc.CalculateTrendingScores(context.Background(), "t1")
	require.NoError(t, err)

	for _, frame := range domain.TimeFrames {
		scores, ok := repo.replaced[frame]
		require.True(t, ok, "frame %s not replaced", frame)
		assert.Empty(t, scores)
	}
}

func TestCalculateTrendingScores_FrameFailureDoesNotStopOthers(t *testing.T) {
	repo := newFakeTrendingRepo()
	repo.replErr[domain.TimeFrameHour] = assert.AnError
	activities := &fakeActivityRepo{
		aggregates: []domain.ActivityAggregate{{ProductID: "p1", Views: 1}},
	}
	svc := newService(repo, activities, &fakeCatalog{}, newFakeCache())

	err := svc.CalculateTrendingScores(context.Background(), "t1")
	require.Error(t, err)

	// the hour frame failed, the remaining frames were still written
	assert.NotContains(t, repo.replaced, domain.TimeFrameHour)
	assert.Contains(t, repo.replaced, domain.TimeFrameDay)
	assert.Contains(t, repo.replaced, domain.TimeFrameWeek)
	assert.Contains(t, repo.replaced, domain.TimeFrameMonth)
}

func TestConfidence_CappedAtOne(t *testing.T) {
	svc := newService(newFakeTrendingRepo(), &fakeActivityRepo{}, &fakeCatalog{}, newFakeCache())

	low := svc.confidence(domain.TrendingScore{Views: 20, UniqueViews: 10})
	assert.InDelta(t, 0.6*20/200+0.4*10/100, low, 1e-9)

	high := svc.confidence(domain.TrendingScore{Views: 100000, UniqueViews: 50000})
	assert.Equal(t, 1.0, high)
}
