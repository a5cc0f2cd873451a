package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"metalpriceservice/internal/rates"
)

// CachedRatesSourceDecorator wraps a RatesSource with a short-lived Redis cache
// of successful snapshots.
type CachedRatesSourceDecorator struct {
	source       RatesSource
	cache        *redis.Client
	ttl          time.Duration
	providerName string
}

// NewCachedRatesSource creates a new CachedRatesSourceDecorator.
func NewCachedRatesSource(source RatesSource, cache *redis.Client, ttl time.Duration, providerName string) *CachedRatesSourceDecorator {
	return &CachedRatesSourceDecorator{
		source:       source,
		cache:        cache,
		ttl:          ttl,
		providerName: providerName,
	}
}

// cacheKey scopes entries to the credential so a changed key never reads
// another key's snapshot. Only a digest prefix of the key is stored.
func (p *CachedRatesSourceDecorator) cacheKey(apiKey string, base rates.Code) string {
	sum := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("provider_cache:%s:%s:{%s}", p.providerName, hex.EncodeToString(sum[:8]), base)
}

// FetchRates returns a cached snapshot for base when one is still fresh,
// otherwise it calls the underlying source and caches the result.
func (p *CachedRatesSourceDecorator) FetchRates(ctx context.Context, apiKey string, base rates.Code) (rates.Snapshot, error) {
	if p.cache == nil || p.ttl <= 0 || apiKey == "" {
		return p.source.FetchRates(ctx, apiKey, base)
	}

	key := p.cacheKey(apiKey, base)

	if data, err := p.cache.Get(ctx, key).Bytes(); err == nil {
		var s rates.Snapshot
		if err := json.Unmarshal(data, &s); err == nil {
			return s, nil
		}
	}

	s, err := p.source.FetchRates(ctx, apiKey, base)
	if err != nil {
		return rates.Snapshot{}, err
	}

	if data, err := json.Marshal(s); err == nil {
		_ = p.cache.Set(ctx, key, data, p.ttl).Err()
	}

	return s, nil
}

var _ RatesSource = (*CachedRatesSourceDecorator)(nil)
