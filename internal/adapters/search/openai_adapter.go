package search

import (
	"context"
	"fmt"

	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/clients/openai"
)

// searchPreamble biases the semantic search toward auction results rather
// than dealer listings or spec sheets.
const searchPreamble = "Searching for comparable farm equipment auction sales"

// OpenAIAdapter implements comparable-sales search over an OpenAI vector
// store of auction reports. The store cannot filter by date, so the
// lookback window is stated in the query text and the retriever enforces
// it on the parsed sale dates.
type OpenAIAdapter struct {
	client     *openai.Client
	maxResults int
}

// Ensure OpenAIAdapter implements SaleSearchProvider
var _ providers.SaleSearchProvider = (*OpenAIAdapter)(nil)

// NewOpenAIAdapter creates a new OpenAI vector store adapter
func NewOpenAIAdapter(client *openai.Client, maxResults int) *OpenAIAdapter {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &OpenAIAdapter{client: client, maxResults: maxResults}
}

// Search returns raw auction report fragments in relevance order.
func (a *OpenAIAdapter) Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error) {
	query := fmt.Sprintf("%s within the last %d days: %s", searchPreamble, windowDays, structuredQuery)
	return a.client.SearchVectorStore(ctx, query, a.maxResults)
}
