package providers

import "context"

// SaleSearchProvider is the port to the external comparable-sales search.
// The backend is treated as an opaque, best-effort semantic search: more
// relevant fragments appear earlier, zero results is a valid outcome, and
// windowDays is a lookback hint the backend may or may not enforce.
type SaleSearchProvider interface {
	Search(ctx context.Context, structuredQuery string, windowDays int) ([]string, error)
}
