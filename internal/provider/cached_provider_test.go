package provider

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"metalpriceservice/internal/rates"
)

func TestCachedRatesSource_FetchRates(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	base := rates.Code("USD")
	apiKey := "secret"
	snapshot := rates.NewSnapshot(base, map[rates.Code]float64{"XAU": 0.00045, "USD": 1}, 1700000000)
	ttl := 10 * time.Second

	t.Run("cache miss then hit", func(t *testing.T) {
		mr.FlushAll()
		src := new(mockSource)
		src.On("FetchRates", mock.Anything, apiKey, base).Return(snapshot, nil).Once()

		cached := NewCachedRatesSource(src, rdb, ttl, "test_provider")

		// First call - cache miss
		got, err := cached.FetchRates(context.Background(), apiKey, base)
		require.NoError(t, err)
		assert.Equal(t, snapshot, got)
		src.AssertExpectations(t)

		// Second call - served from cache, the source expectation was Once()
		got2, err := cached.FetchRates(context.Background(), apiKey, base)
		require.NoError(t, err)
		assert.Equal(t, snapshot, got2)
		assert.True(t, mr.Exists(cached.cacheKey(apiKey, base)))
	})

	t.Run("entries are scoped to the api key", func(t *testing.T) {
		mr.FlushAll()
		src := new(mockSource)
		invalid := newProviderError("test_provider", nil, "invalid key")
		src.On("FetchRates", mock.Anything, "good", base).Return(snapshot, nil).Once()
		src.On("FetchRates", mock.Anything, "bad", base).Return(rates.Snapshot{}, invalid).Once()

		cached := NewCachedRatesSource(src, rdb, ttl, "test_provider")

		got, err := cached.FetchRates(context.Background(), "good", base)
		require.NoError(t, err)
		assert.Equal(t, snapshot, got)

		_, err = cached.FetchRates(context.Background(), "bad", base)
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "invalid key", perr.Error())
		src.AssertExpectations(t)

		assert.NotEqual(t, cached.cacheKey("good", base), cached.cacheKey("bad", base))
		for _, k := range mr.Keys() {
			assert.NotContains(t, k, "good")
		}
	})

	t.Run("provider error is not cached", func(t *testing.T) {
		mr.FlushAll()
		src := new(mockSource)
		src.On("FetchRates", mock.Anything, apiKey, base).Return(rates.Snapshot{}, assert.AnError).Once()

		cached := NewCachedRatesSource(src, rdb, ttl, "test_provider")

		_, err := cached.FetchRates(context.Background(), apiKey, base)
		assert.Error(t, err)

		src.On("FetchRates", mock.Anything, apiKey, base).Return(snapshot, nil).Once()
		got, err := cached.FetchRates(context.Background(), apiKey, base)
		require.NoError(t, err)
		assert.Equal(t, snapshot, got)
		src.AssertExpectations(t)
	})

	t.Run("cache expires", func(t *testing.T) {
		mr.FlushAll()
		src := new(mockSource)
		src.On("FetchRates", mock.Anything, apiKey, base).Return(snapshot, nil).Once()

		cached := NewCachedRatesSource(src, rdb, ttl, "test_provider")

		_, _ = cached.FetchRates(context.Background(), apiKey, base)

		mr.FastForward(ttl + time.Second)

		src.On("FetchRates", mock.Anything, apiKey, base).Return(snapshot, nil).Once()
		_, err := cached.FetchRates(context.Background(), apiKey, base)
		assert.NoError(t, err)
		src.AssertExpectations(t)
	})

	t.Run("missing key bypasses cache", func(t *testing.T) {
		mr.FlushAll()
		src := new(mockSource)
		src.On("FetchRates", mock.Anything, "", base).Return(rates.Snapshot{}, ErrMissingCredential).Twice()

		cached := NewCachedRatesSource(src, rdb, ttl, "test_provider")

		for range 2 {
			_, err := cached.FetchRates(context.Background(), "", base)
			assert.ErrorIs(t, err, ErrMissingCredential)
		}
		src.AssertExpectations(t)
	})

	t.Run("nil client calls source directly", func(t *testing.T) {
		src := new(mockSource)
		src.On("FetchRates", mock.Anything, apiKey, base).Return(snapshot, nil).Twice()

		cached := NewCachedRatesSource(src, nil, ttl, "test_provider")
		_, _ = cached.FetchRates(context.Background(), apiKey, base)
		_, _ = cached.FetchRates(context.Background(), apiKey, base)
		src.AssertExpectations(t)
	})
}
