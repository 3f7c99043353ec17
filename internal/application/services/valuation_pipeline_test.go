package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agrivalor/equipment-valuation/pkg/errors"
)

func newTestPipeline(provider *stubProvider) *ValuationPipeline {
	cfg := testValuationConfig()
	retriever := NewRetrieverService(provider, cfg, nil)
	retriever.now = func() time.Time { return testNow }
	return NewValuationPipeline(retriever, NewValuatorService(cfg), NewFormatterService(), nil)
}

func TestPipeline_EndToEnd(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90: {
			fragment(12, 150000),
			fragment(28, 160000),
			fragment(45, 165000),
			fragment(70, 172000),
			fragment(80, 176180),
			fragment(85, 400000),
		},
	}}
	pipeline := newTestPipeline(provider)

	response, err := pipeline.Run(context.Background(), retrieverQuery())
	require.NoError(t, err)

	// Base is the median of the five survivors (165,000); the query is a
	// year newer than the comp median so age adds 2,475, then the
	// excellent multiplier lands on 187,572, rounded to the hundred
	assert.InDelta(t, 187600, response.FairMarketValue, 1e-9)
	assert.Equal(t, "high", response.Confidence)
	assert.Len(t, response.ComparableSales, 5)
	require.Len(t, response.Adjustments, 2)
	assert.Equal(t, AdjustmentAge, response.Adjustments[0].Reason)
	assert.Equal(t, AdjustmentCondition, response.Adjustments[1].Reason)
	assert.NotEmpty(t, response.Explanation)
	assert.Equal(t, "John Deere", response.Query.Make)

	// One query; the recent window had enough
	assert.Equal(t, []int{90}, provider.calls)
}

func TestPipeline_ExpandsWindowWhenThin(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90:  {fragment(12, 150000)},
		180: {fragment(12, 150000), fragment(110, 160000), fragment(150, 165000)},
	}}
	pipeline := newTestPipeline(provider)

	response, err := pipeline.Run(context.Background(), retrieverQuery())
	require.NoError(t, err)

	assert.Len(t, response.ComparableSales, 3)
	assert.Equal(t, []int{90, 180}, provider.calls)
}

func TestPipeline_RetrievalErrorSurfaces(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{}}
	pipeline := newTestPipeline(provider)

	_, err := pipeline.Run(context.Background(), retrieverQuery())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeRetrieval, apperrors.TypeOf(err))
}
