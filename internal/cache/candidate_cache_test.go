package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (CandidateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewCandidateCache(config.CacheConfig{
		Enabled:             true,
		RedisURL:            "redis://" + mr.Addr(),
		CandidateTTLSeconds: 60,
	})
	require.NoError(t, err)
	return c, mr
}

func testFilter() domain.CandidateFilter {
	return domain.CandidateFilter{
		StoreID:    1,
		SupplierID: 20,
		SectionID:  3,
		Window: domain.PredictionWindow{
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestCandidateCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	filter := testFilter()

	_, ok, err := c.GetLines(ctx, filter)
	require.NoError(t, err)
	assert.False(t, ok)

	purchased := time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)
	lines := []domain.OrderLine{{
		ItemCode:         "A1",
		ItemName:         "Arroz 1kg",
		DaysStockDesired: 30,
		PackSize:         12,
		LastPurchaseDate: &purchased,
		SalePrediction:   decimal.NewFromInt(300),
		StockAvailable:   decimal.NewFromInt(50),
		PurchasePrice:    decimal.RequireFromString("10.25"),
	}}
	require.NoError(t, c.SetLines(ctx, filter, lines))

	got, ok, err := c.GetLines(ctx, filter)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "A1", got[0].ItemCode)
	assert.True(t, got[0].SalePrediction.Equal(decimal.NewFromInt(300)))
	assert.True(t, got[0].PurchasePrice.Equal(decimal.RequireFromString("10.25")))
	require.NotNil(t, got[0].LastPurchaseDate)
	assert.True(t, got[0].LastPurchaseDate.Equal(purchased))

	assert.Equal(t, 60*time.Second, mr.TTL(buildCandidateKey(filter)))
}

func TestCandidateCacheKeysDifferByWindow(t *testing.T) {
	a := testFilter()
	b := testFilter()
	b.Window.EndDate = b.Window.EndDate.AddDate(0, 0, 1)
	assert.NotEqual(t, buildCandidateKey(a), buildCandidateKey(b))

	sub := int64(4)
	b = testFilter()
	b.SubsectionID = &sub
	assert.NotEqual(t, buildCandidateKey(a), buildCandidateKey(b))
	assert.Equal(t, buildCandidateKey(a), buildCandidateKey(testFilter()))
}

func TestCandidateCacheInvalidateAll(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLines(ctx, testFilter(), []domain.OrderLine{{ItemCode: "A1"}}))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.InvalidateAll(ctx))

	_, ok, err := c.GetLines(ctx, testFilter())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestNoopCandidateCache(t *testing.T) {
	c, err := NewCandidateCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.SetLines(context.Background(), testFilter(), []domain.OrderLine{{ItemCode: "A1"}}))
	_, ok, err := c.GetLines(context.Background(), testFilter())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCandidateTTL(t *testing.T) {
	assert.Equal(t, defaultCandidateTTL, candidateTTL(config.CacheConfig{}))
	assert.Equal(t, 90*time.Second, candidateTTL(config.CacheConfig{CandidateTTLSeconds: 90}))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPassword: "pw", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestNewCandidateCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewCandidateCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + addr})
	assert.Error(t, err)
}
