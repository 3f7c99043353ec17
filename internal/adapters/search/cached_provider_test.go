package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	fragments []string
	calls     int
}

func (p *recordingProvider) Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error) {
	p.calls++
	return p.fragments, nil
}

type memoryCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return data, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestCachedProvider_MissThenHit(t *testing.T) {
	inner := &recordingProvider{fragments: []string{"fragment a", "fragment b"}}
	cache := newMemoryCache()
	provider := NewCachedProvider(inner, cache, time.Minute)

	first, err := provider.Search(context.Background(), "john deere 8370r", 90)
	require.NoError(t, err)
	assert.Equal(t, inner.fragments, first)
	assert.Equal(t, 1, inner.calls)

	second, err := provider.Search(context.Background(), "john deere 8370r", 90)
	require.NoError(t, err)
	assert.Equal(t, inner.fragments, second)
	assert.Equal(t, 1, inner.calls, "second search must be served from cache")
}

func TestCachedProvider_KeyVariesByWindow(t *testing.T) {
	inner := &recordingProvider{fragments: []string{"fragment a"}}
	cache := newMemoryCache()
	provider := NewCachedProvider(inner, cache, time.Minute)

	_, err := provider.Search(context.Background(), "john deere 8370r", 90)
	require.NoError(t, err)
	_, err = provider.Search(context.Background(), "john deere 8370r", 180)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "different windows must not share cache entries")
	assert.Len(t, cache.entries, 2)
}

func TestCachedProvider_CacheFailuresDegradeGracefully(t *testing.T) {
	inner := &recordingProvider{fragments: []string{"fragment a"}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	provider := NewCachedProvider(inner, cache, time.Minute)

	fragments, err := provider.Search(context.Background(), "john deere 8370r", 90)
	require.NoError(t, err)
	assert.Equal(t, inner.fragments, fragments)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_CorruptEntryFallsThrough(t *testing.T) {
	inner := &recordingProvider{fragments: []string{"fragment a"}}
	cache := newMemoryCache()
	provider := NewCachedProvider(inner, cache, time.Minute)

	cache.entries[fragmentsCacheKey("john deere 8370r", 90)] = []byte("{not json")

	fragments, err := provider.Search(context.Background(), "john deere 8370r", 90)
	require.NoError(t, err)
	assert.Equal(t, inner.fragments, fragments)
	assert.Equal(t, 1, inner.calls)

	// The bad entry is overwritten with a fresh one
	var stored []string
	require.NoError(t, json.Unmarshal(cache.entries[fragmentsCacheKey("john deere 8370r", 90)], &stored))
	assert.Equal(t, inner.fragments, stored)
}
