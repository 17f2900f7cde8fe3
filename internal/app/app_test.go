// internal/app/app_test.go
package app

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/config"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const fixtures = `
properties:
  - id: "1"
    title: Kigali City Apartment
    location: Kigali
    amenities: [wifi]
    rating: 4.8
    review_count: 40
    price_per_night: 80
    available_for_monthly_rental: true
  - id: "2"
    title: Musanze Cabin
    location: Musanze
    rating: 3.0
    review_count: 2
    price_per_night: 40
tours:
  - id: t1
    title: Gorilla Trekking Day Trip
    location: Musanze
    rating: 4.9
    review_count: 12
`

var fastOptions = Options{ConnectRetries: 1, RetryDelay: time.Millisecond}

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtures), 0o600))
	return &config.Config{
		Search: config.SearchConfig{
			Source:        config.SourceMemory,
			FixturesPath:  path,
			ExchangeRates: map[string]float64{"usd": 1, "rwf": 0.00075},
		},
	}
}

func TestNew_MemorySource(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(t), fastOptions, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, a.Checkers)

	resp, err := a.Service.Search(context.Background(), marketplace.Request{
		Query:   "kigali apartment",
		Filters: search.Filters{Type: search.SearchProperties},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "1", resp.Results[0].ID())

	_, err = a.Service.Invalidate(context.Background(), nil)
	assert.Error(t, err)
}

func TestNew_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.Search.Cache = config.CacheConfig{Enabled: true, TTL: 60}
	cfg.Database.Redis = config.RedisConfig{Address: mr.Addr()}

	a, err := New(context.Background(), cfg, fastOptions, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	require.Len(t, a.Checkers, 1)
	assert.Equal(t, "redis", a.Checkers[0].Name())

	resp, err := a.Service.Search(context.Background(), marketplace.Request{Query: "gorilla"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Len(t, mr.Keys(), len(search.AllKinds))

	removed, err := a.Service.Invalidate(context.Background(), []search.Kind{search.KindProperty, search.KindTour})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Len(t, mr.Keys(), 2)
}

func TestNew_Errors(t *testing.T) {
	t.Run("missing fixtures", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.Search.FixturesPath = filepath.Join(t.TempDir(), "none.yaml")
		_, err := New(context.Background(), cfg, fastOptions, nil, logger.NewTestLogger(t))
		assert.ErrorContains(t, err, "read fixtures")
	})

	t.Run("unknown source", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.Search.Source = "mongo"
		_, err := New(context.Background(), cfg, fastOptions, nil, logger.NewTestLogger(t))
		assert.ErrorContains(t, err, `unknown search source "mongo"`)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := memoryConfig(t)
		cfg.Search.Cache = config.CacheConfig{Enabled: true, TTL: 60}
		cfg.Database.Redis = config.RedisConfig{Address: addr}
		_, err := New(context.Background(), cfg, fastOptions, nil, logger.NewTestLogger(t))
		assert.ErrorContains(t, err, "Redis connection failed after 1 attempts")
	})
}

func TestIndexNames(t *testing.T) {
	indices, err := indexNames(map[string]string{"tours": "tours_v2", "vehicle": "fleet"})
	require.NoError(t, err)
	assert.Equal(t, map[search.Kind]string{search.KindTour: "tours_v2", search.KindTransport: "fleet"}, indices)

	_, err = indexNames(map[string]string{"boats": "x"})
	assert.ErrorContains(t, err, "search.indices")
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return stderrors.New("connection refused")
		}
		return nil
	}, Options{ConnectRetries: 5, RetryDelay: time.Millisecond}, logger.NewTestLogger(t), "op")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryWithBackoff(func() error {
		calls++
		return stderrors.New("connection refused")
	}, Options{ConnectRetries: 2, RetryDelay: time.Millisecond}, logger.NewTestLogger(t), "op")
	assert.EqualError(t, err, "op failed after 2 attempts: connection refused")
	assert.Equal(t, 2, calls)
}
