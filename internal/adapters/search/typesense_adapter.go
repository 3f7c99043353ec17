package search

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
	tsclient "github.com/agrivalor/equipment-valuation/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements comparable-sales search against a local
// Typesense auction_sales collection. Unlike the vector store backend it
// can enforce the sale-date window server side.
type TypesenseAdapter struct {
	client     *tsclient.Client
	maxResults int
}

// Ensure TypesenseAdapter implements SaleSearchProvider
var _ providers.SaleSearchProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client, maxResults int) *TypesenseAdapter {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &TypesenseAdapter{client: client, maxResults: maxResults}
}

// Search returns the raw source text of auction sales matching the query
// with a sale date inside the lookback window, most relevant first.
func (a *TypesenseAdapter) Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error) {
	cutoff := time.Now().AddDate(0, 0, -windowDays).Unix()

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(structuredQuery),
		QueryBy:  pointer.String("source_text,make,model"),
		FilterBy: pointer.String(fmt.Sprintf("sale_date:>=%d", cutoff)),
		PerPage:  pointer.Int(a.maxResults),
	}

	result, err := a.client.Client().Collection(tsclient.AuctionSalesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search auction sales: %w", err)
	}

	fragments := []string{}
	if result.Hits == nil {
		return fragments, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		if text, ok := doc["source_text"].(string); ok && text != "" {
			fragments = append(fragments, text)
		}
	}

	return fragments, nil
}
