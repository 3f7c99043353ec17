package search

import (
	"context"
	"fmt"
	"time"

	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
)

// MockAdapter serves canned auction fragments for development and tests.
// Sale dates are synthesized relative to now so the retriever's window
// logic behaves the same as against a live backend.
type MockAdapter struct {
	now func() time.Time
}

// Ensure MockAdapter implements SaleSearchProvider
var _ providers.SaleSearchProvider = (*MockAdapter)(nil)

// NewMockAdapter creates a new mock search adapter
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{now: time.Now}
}

// fixtures are (days ago, fragment template) pairs covering both windows.
var fixtures = []struct {
	daysAgo int
	text    string
}{
	{12, "JOHN DEERE, 8370R, '19, 1,850 hours, sold %s for $ 176,180, BigIron Auctions, Huron SD"},
	{28, "JOHN DEERE, 8370R, '18, 2,400 hours, sold %s for $ 165,000, Purple Wave Auction, Manhattan KS"},
	{45, "JOHN DEERE, 8370RT, '18, 3,100 hours, sold %s for $ 160,000, Sullivan Auctioneers, Hamilton IL"},
	{70, "JOHN DEERE, 8370R, '17, 4,000 hours, sold %s for $ 150,000, Steffes Group Auction, Fargo ND"},
	{110, "JOHN DEERE, 8370R, '19, 1,500 hours, sold %s for $ 172,000, DPA Auctions, Fremont NE"},
	{150, "JOHN DEERE, 8370R, '16, 5,200 hours, sold %s for $ 141,500, Ritchie Bros Auctioneers, Minneapolis MN"},
}

// Search returns fixture fragments whose synthesized sale date falls
// inside the lookback window.
func (a *MockAdapter) Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error) {
	cutoff := a.now().AddDate(0, 0, -windowDays)

	fragments := []string{}
	for _, f := range fixtures {
		saleDate := a.now().AddDate(0, 0, -f.daysAgo)
		if saleDate.Before(cutoff) {
			continue
		}
		fragments = append(fragments, fmt.Sprintf(f.text, saleDate.Format("01/02/2006")))
	}
	return fragments, nil
}
