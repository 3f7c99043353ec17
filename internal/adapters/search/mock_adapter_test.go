package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrivalor/equipment-valuation/pkg/extract"
)

func TestMockAdapter_WindowFiltering(t *testing.T) {
	adapter := NewMockAdapter()
	adapter.now = func() time.Time {
		return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	}

	recent, err := adapter.Search(context.Background(), "john deere 8370r", 90)
	require.NoError(t, err)
	assert.Len(t, recent, 4)

	expanded, err := adapter.Search(context.Background(), "john deere 8370r", 180)
	require.NoError(t, err)
	assert.Len(t, expanded, 6)
}

func TestMockAdapter_FragmentsAreParsable(t *testing.T) {
	adapter := NewMockAdapter()

	fragments, err := adapter.Search(context.Background(), "john deere 8370r", 180)
	require.NoError(t, err)
	require.NotEmpty(t, fragments)

	for _, fragment := range fragments {
		price, ok := extract.Price(fragment)
		assert.True(t, ok, "fragment %q has no price", fragment)
		assert.Greater(t, price, 0.0)

		_, ok = extract.SaleDate(fragment)
		assert.True(t, ok, "fragment %q has no sale date", fragment)

		_, ok = extract.Hours(fragment)
		assert.True(t, ok, "fragment %q has no hours", fragment)
	}
}
