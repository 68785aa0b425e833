package similarity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"shopPulse/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSimilarityRepo struct {
	rows  []domain.SimilarityScore
	saved []domain.SimilarityScore
}

func (f *fakeSimilarityRepo) FindBySource(ctx context.Context, tenantID, productID, similarityType string, minScore float64, limit int) ([]domain.SimilarityScore, error) {
	var out []domain.SimilarityScore
	for _, row := range f.rows {
		if row.TenantID != tenantID || row.SourceProductID != productID {
			continue
		}
		if similarityType != "" && row.SimilarityType != similarityType {
			continue
		}
		if row.Score < minScore {
			continue
		}
		out = append(out, row)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSimilarityRepo) SaveBatch(ctx context.Context, scores []domain.SimilarityScore) error {
	f.saved = append(f.saved, scores...)
	return nil
}

type fakeFeedbackRepo struct {
	created []domain.RecommendationFeedback
	stats   []domain.FeedbackStat
	err     error
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, feedback *domain.RecommendationFeedback) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *feedback)
	return nil
}

func (f *fakeFeedbackRepo) AggregateStats(ctx context.Context, tenantID string) ([]domain.FeedbackStat, error) {
	return f.stats, nil
}

type fakeCatalog struct {
	products map[string]domain.CatalogProduct
}

func (f *fakeCatalog) GetProduct(ctx context.Context, tenantID, productID string) (*domain.CatalogProduct, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, errors.New("product not found")
	}
	return &p, nil
}

func (f *fakeCatalog) GetProductsByCategory(ctx context.Context, tenantID, category string) ([]domain.CatalogProduct, error) {
	var out []domain.CatalogProduct
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCache struct {
	data map[string]string
	sets map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string), sets: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	val, ok := f.data[key]
	return val, ok
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	f.sets[key] = value
	f.data[key] = value
}

func newService(simRepo *fakeSimilarityRepo, fbRepo *fakeFeedbackRepo, catalog *fakeCatalog, cache *fakeCache) *SimilarityService {
	return NewSimilarityService(simRepo, fbRepo, catalog, cache, nil, DefaultConfig())
}

func TestGetSimilarProducts_PrecomputedRows(t *testing.T) {
	simRepo := &fakeSimilarityRepo{
		rows: []domain.SimilarityScore{
			{
				TenantID:        "t1",
				SourceProductID: "p1",
				TargetProductID: "p2",
				SimilarityType:  "attribute",
				Score:           0.8,
				Reasons:         []string{"Same brand: Acme"},
				ExpiresAt:       time.Now().Add(time.Hour),
			},
		},
	}
	svc := newService(simRepo, &fakeFeedbackRepo{}, &fakeCatalog{}, newFakeCache())

	recs, err := svc.GetSimilarProducts(context.Background(), "t1", "p1", 10, "", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "p2", recs[0].ProductID)
	assert.InDelta(t, 0.8, recs[0].Score, 1e-9)
	assert.Equal(t, domain.RecommendationTypeSimilar, recs[0].RecommendationType)
	assert.Equal(t, "precomputed", recs[0].Metadata["source"])
}

func TestGetSimilarProducts_FallbackAttributeScoring(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]domain.CatalogProduct{
			"p1": {ID: "p1", Category: "sofas", Brand: "Acme", Price: 100},
			"p2": {ID: "p2", Category: "sofas", Brand: "Other", Price: 90},
		},
	}
	simRepo := &fakeSimilarityRepo{}
	svc := newService(simRepo, &fakeFeedbackRepo{}, catalog, newFakeCache())

	recs, err := svc.GetSimilarProducts(context.Background(), "t1", "p1", 10, "", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// category 0.30 + price 0.20*(1 - 10/100)
	assert.Equal(t, "p2", recs[0].ProductID)
	assert.InDelta(t, 0.48, recs[0].Score, 1e-9)
	assert.Contains(t, recs[0].Reasons, "Both are in the sofas category")
	assert.Contains(t, recs[0].Reasons, "Similar price range")
	assert.Equal(t, "on_the_fly", recs[0].Metadata["source"])

	// the computed set is persisted for the next read
	require.Len(t, simRepo.saved, 1)
	assert.Equal(t, "p2", simRepo.saved[0].TargetProductID)
	assert.True(t, simRepo.saved[0].ExpiresAt.After(simRepo.saved[0].CalculatedAt))
}

func TestGetSimilarProducts_FallbackExcludesSourceAndLowScores(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]domain.CatalogProduct{
			"p1": {ID: "p1", Category: "sofas", Brand: "Acme", Price: 100},
			"p2": {ID: "p2", Category: "sofas", Brand: "Acme", Price: 100},
			"p3": {ID: "p3", Category: "sofas", Brand: "Other", Price: 2000},
		},
	}
	svc := newService(&fakeSimilarityRepo{}, &fakeFeedbackRepo{}, catalog, newFakeCache())

	// min score 0.5 keeps only the same-brand close-price candidate
	recs, err := svc.GetSimilarProducts(context.Background(), "t1", "p1", 10, "", 0.5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p2", recs[0].ProductID)
}

func TestGetSimilarProducts_IdenticalAttributesScoreOne(t *testing.T) {
	full := domain.CatalogProduct{
		Category: "sofas", Brand: "Acme", Price: 100,
		Style: "modern", Material: "leather", Color: "brown",
	}
	a, b := full, full
	a.ID, b.ID = "p1", "p2"

	score, reasons, features := scoreSimilarity(a, b, DefaultConfig())
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Len(t, reasons, 6)
	assert.InDelta(t, 0.20, features["price"], 1e-9)
}

func TestGetSimilarProducts_UnresolvableSourceYieldsEmpty(t *testing.T) {
	svc := newService(&fakeSimilarityRepo{}, &fakeFeedbackRepo{}, &fakeCatalog{}, newFakeCache())

	recs, err := svc.GetSimilarProducts(context.Background(), "t1", "missing", 10, "", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGetSimilarProducts_CacheHit(t *testing.T) {
	cached := []domain.ProductRecommendation{{ProductID: "p7", Score: 0.5}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	cache := newFakeCache()
	cache.data["similar:t1:p1:any:10"] = string(raw)

	svc := newService(&fakeSimilarityRepo{}, &fakeFeedbackRepo{}, &fakeCatalog{}, cache)

	recs, err := svc.GetSimilarProducts(context.Background(), "t1", "p1", 10, "", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p7", recs[0].ProductID)
}

func TestSubmitFeedback_StoresRowAndReturnsID(t *testing.T) {
	fbRepo := &fakeFeedbackRepo{}
	svc := newService(&fakeSimilarityRepo{}, fbRepo, &fakeCatalog{}, newFakeCache())

	id, err := svc.SubmitFeedback(context.Background(), SubmitFeedbackInput{
		TenantID:           "t1",
		UserID:             "u1",
		ProductID:          "p1",
		RecommendationType: domain.RecommendationTypeSimilar,
		FeedbackType:       "click",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, fbRepo.created, 1)
	assert.Equal(t, id, fbRepo.created[0].ID)
	assert.Equal(t, "t1", fbRepo.created[0].TenantID)
	assert.Equal(t, "click", fbRepo.created[0].FeedbackType)
	assert.False(t, fbRepo.created[0].Timestamp.IsZero())
}

func TestSubmitFeedback_Validation(t *testing.T) {
	svc := newService(&fakeSimilarityRepo{}, &fakeFeedbackRepo{}, &fakeCatalog{}, newFakeCache())

	_, err := svc.SubmitFeedback(context.Background(), SubmitFeedbackInput{
		TenantID:  "t1",
		UserID:    "u1",
		ProductID: "p1",
	})
	assert.Error(t, err)
}

func TestSubmitFeedback_StoreFailureBubbles(t *testing.T) {
	fbRepo := &fakeFeedbackRepo{err: assert.AnError}
	svc := newService(&fakeSimilarityRepo{}, fbRepo, &fakeCatalog{}, newFakeCache())

	_, err := svc.SubmitFeedback(context.Background(), SubmitFeedbackInput{
		TenantID:     "t1",
		UserID:       "u1",
		ProductID:    "p1",
		FeedbackType: "click",
	})
	assert.Error(t, err)
}

func TestGetRecommendationStats(t *testing.T) {
	fbRepo := &fakeFeedbackRepo{
		stats: []domain.FeedbackStat{
			{FeedbackType: "click", RecommendationType: "similar", Count: 4, AvgRating: 0},
			{FeedbackType: "rating", RecommendationType: "trending", Count: 2, AvgRating: 4.5},
		},
	}
	svc := newService(&fakeSimilarityRepo{}, fbRepo, &fakeCatalog{}, newFakeCache())

	stats, err := svc.GetRecommendationStats(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(4), stats[0].Count)
}
