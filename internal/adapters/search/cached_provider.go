package search

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
)

// CachedProvider wraps a SaleSearchProvider with a short-TTL fragment
// cache, keyed per (query, window). Only raw provider output is cached;
// valuations themselves are never stored.
type CachedProvider struct {
	provider providers.SaleSearchProvider
	cache    providers.CacheProvider
	ttl      time.Duration
}

// Ensure CachedProvider implements SaleSearchProvider
var _ providers.SaleSearchProvider = (*CachedProvider)(nil)

// NewCachedProvider creates a new caching decorator
func NewCachedProvider(provider providers.SaleSearchProvider, cache providers.CacheProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
	}
}

func fragmentsCacheKey(query string, windowDays int) string {
	sum := sha1.Sum([]byte(query))
	return fmt.Sprintf("comps:fragments:%s:%d", hex.EncodeToString(sum[:]), windowDays)
}

// Search serves fragments from cache when possible, falling through to
// the wrapped provider. Cache failures degrade to a normal search.
func (p *CachedProvider) Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error) {
	logger := observability.LoggerFromContext(ctx)
	key := fragmentsCacheKey(structuredQuery, windowDays)

	if cached, err := p.cache.Get(ctx, key); err == nil {
		var fragments []string
		if err := json.Unmarshal(cached, &fragments); err == nil {
			logger.Debug().Str("key", key).Int("fragments", len(fragments)).Msg("fragment cache hit")
			return fragments, nil
		}
	}

	fragments, err := p.provider.Search(ctx, structuredQuery, windowDays)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(fragments); err == nil {
		if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to cache fragments")
		}
	}

	return fragments, nil
}
