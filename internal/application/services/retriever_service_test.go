package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrivalor/equipment-valuation/internal/domain/entities"
	apperrors "github.com/agrivalor/equipment-valuation/pkg/errors"
)

// stubProvider returns canned fragments per window and records the
// windows it was queried with.
type stubProvider struct {
	byWindow map[int][]string
	err      error
	calls    []int
}

func (s *stubProvider) Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error) {
	s.calls = append(s.calls, windowDays)
	if s.err != nil {
		return nil, s.err
	}
	return s.byWindow[windowDays], nil
}

var testNow = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

// fragment fabricates a parsable auction snippet daysAgo days before testNow.
func fragment(daysAgo int, price int) string {
	date := testNow.AddDate(0, 0, -daysAgo).Format("01/02/2006")
	return fmt.Sprintf("JOHN DEERE, 8370R, '18, 2,100 hours, sold %s for $ %d, BigIron Auctions", date, price)
}

func newTestRetriever(provider *stubProvider) *RetrieverService {
	svc := NewRetrieverService(provider, testValuationConfig(), nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func retrieverQuery() *entities.ValuationQuery {
	return &entities.ValuationQuery{
		Make:        "John Deere",
		Model:       "8370R",
		Year:        2019,
		Condition:   entities.ConditionExcellent,
		Description: "2000 hours",
	}
}

func TestBuildStructuredQuery(t *testing.T) {
	q := BuildStructuredQuery(retrieverQuery())
	assert.Contains(t, q, `make: "John Deere"`)
	assert.Contains(t, q, `model: "8370R"`)
	assert.Contains(t, q, `year: "2019"`)
	assert.Contains(t, q, "2000 hours")
}

func TestRetrieve_NoExpansionWhenInitialWindowSuffices(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90: {fragment(10, 150000), fragment(30, 160000), fragment(50, 165000)},
	}}
	svc := newTestRetriever(provider)

	comps, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.NoError(t, err)

	assert.Len(t, comps, 3)
	assert.Equal(t, []int{90}, provider.calls)
}

func TestRetrieve_ExpandedWindowReplacesInitial(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90: {fragment(10, 150000), fragment(30, 160000)},
		180: {
			fragment(15, 151000), fragment(35, 161000),
			fragment(120, 149000), fragment(150, 142000),
		},
	}}
	svc := newTestRetriever(provider)

	comps, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.NoError(t, err)

	// The 180-day set is used wholesale, not merged with the 90-day set
	assert.Len(t, comps, 4)
	assert.Equal(t, []int{90, 180}, provider.calls)
	assert.InDelta(t, 151000, comps[0].Price, 1e-9)
}

func TestRetrieve_SingleExpansionOnly(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90:  {},
		180: {fragment(120, 149000)},
	}}
	svc := newTestRetriever(provider)

	comps, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.NoError(t, err)

	// Below the floor even after expansion, but one parsable record is
	// enough to proceed; no third query is ever issued
	assert.Len(t, comps, 1)
	assert.Equal(t, []int{90, 180}, provider.calls)
}

func TestRetrieve_UnparsableFragmentsDropped(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90: {
			fragment(10, 150000),
			"JOHN DEERE 8370R premium tractor, call for pricing", // no price, no date
			fragment(30, 160000),
			"sold 08/12/2024, terms available on request", // no price
			fragment(50, 165000),
		},
	}}
	svc := newTestRetriever(provider)

	comps, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.NoError(t, err)

	require.Len(t, comps, 3)
	for _, c := range comps {
		assert.Greater(t, c.Price, 0.0)
		assert.False(t, c.SaleDate.IsZero())
	}
}

func TestRetrieve_WindowEnforcedOnParsedDates(t *testing.T) {
	// The backend ignores the window hint and returns a stale sale; the
	// retriever must filter it out by parsed date
	provider := &stubProvider{byWindow: map[int][]string{
		90: {fragment(10, 150000), fragment(30, 160000), fragment(300, 99000), fragment(50, 165000)},
	}}
	svc := newTestRetriever(provider)

	comps, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.NoError(t, err)

	require.Len(t, comps, 3)
	for _, c := range comps {
		assert.True(t, c.SaleDate.After(testNow.AddDate(0, 0, -90)))
	}
}

func TestRetrieve_ZeroParsableFailsWithRetrievalError(t *testing.T) {
	provider := &stubProvider{byWindow: map[int][]string{
		90:  {"nothing useful"},
		180: {"still nothing useful"},
	}}
	svc := newTestRetriever(provider)

	_, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeRetrieval, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "no comparable sales found")
}

func TestRetrieve_ProviderErrorWrappedAsRetrievalError(t *testing.T) {
	cause := errors.New("connection refused")
	provider := &stubProvider{err: cause}
	svc := newTestRetriever(provider)

	_, err := svc.Retrieve(context.Background(), retrieverQuery())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeRetrieval, apperrors.TypeOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestParseFragment_FieldExtraction(t *testing.T) {
	svc := newTestRetriever(&stubProvider{})

	sale, ok := svc.parseFragment(fragment(10, 176500), retrieverQuery())
	require.True(t, ok)

	assert.Equal(t, "John Deere", sale.Make)
	assert.Equal(t, "8370R", sale.Model)
	assert.Equal(t, 2018, sale.Year)
	assert.InDelta(t, 176500, sale.Price, 1e-9)
	require.NotNil(t, sale.Hours)
	assert.InDelta(t, 2100, *sale.Hours, 1e-9)
	assert.Equal(t, "BigIron Auctions", sale.AuctionCompany)
	assert.Equal(t, "John Deere 8370R - BigIron Auctions", sale.SaleID())
}
