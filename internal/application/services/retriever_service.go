package services

import (
	"context"
	"fmt"
	"time"

	"github.com/agrivalor/equipment-valuation/internal/domain/entities"
	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
	"github.com/agrivalor/equipment-valuation/pkg/config"
	apperrors "github.com/agrivalor/equipment-valuation/pkg/errors"
	"github.com/agrivalor/equipment-valuation/pkg/extract"
)

// RetrieverService turns a valuation query into a set of comparable
// sales. It issues the structured search, parses raw fragments into
// typed records, and widens the lookback window once when the recent
// window is too thin to value from.
type RetrieverService struct {
	provider providers.SaleSearchProvider
	cfg      config.ValuationConfig
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewRetrieverService creates a new retriever service
func NewRetrieverService(provider providers.SaleSearchProvider, cfg config.ValuationConfig, metrics *observability.Metrics) *RetrieverService {
	return &RetrieverService{
		provider: provider,
		cfg:      cfg,
		metrics:  metrics,
		now:      time.Now,
	}
}

// BuildStructuredQuery embeds make, model and year alongside the free
// text so the semantic search favors exact model matches over generic
// category matches.
func BuildStructuredQuery(query *entities.ValuationQuery) string {
	blob := fmt.Sprintf("%s %s %d %s", query.Make, query.Model, query.Year, query.Description)
	return fmt.Sprintf("%s make: %q model: %q year: %q",
		blob, query.Make, query.Model, fmt.Sprintf("%d", query.Year))
}

// Retrieve returns comparable sales in provider order, every record
// carrying a price and sale date. Statistical cleaning is the valuator's
// job, not the retriever's.
func (s *RetrieverService) Retrieve(ctx context.Context, query *entities.ValuationQuery) ([]entities.ComparableSale, error) {
	logger := observability.LoggerFromContext(ctx)
	structured := BuildStructuredQuery(query)

	comps, err := s.retrieveWindow(ctx, query, structured, s.cfg.InitialWindowDays)
	if err != nil {
		return nil, apperrors.NewRetrievalError("comparable sales search failed", err)
	}

	if len(comps) < s.cfg.MinComparables {
		logger.Info().
			Int("found", len(comps)).
			Int("window_days", s.cfg.InitialWindowDays).
			Int("expanded_window_days", s.cfg.ExpandedWindowDays).
			Msg("too few comparable sales, expanding window")
		if s.metrics != nil {
			s.metrics.WindowExpansions.Add(ctx, 1)
		}

		// The wider window is a superset query: its result replaces the
		// recent set rather than being merged into it.
		comps, err = s.retrieveWindow(ctx, query, structured, s.cfg.ExpandedWindowDays)
		if err != nil {
			return nil, apperrors.NewRetrievalError("comparable sales search failed", err)
		}
	}

	if len(comps) == 0 {
		return nil, apperrors.NewRetrievalError("no comparable sales found", nil)
	}

	return comps, nil
}

func (s *RetrieverService) retrieveWindow(ctx context.Context, query *entities.ValuationQuery, structured string, windowDays int) ([]entities.ComparableSale, error) {
	logger := observability.LoggerFromContext(ctx)

	fragments, err := s.provider.Search(ctx, structured, windowDays)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, -windowDays)
	comps := []entities.ComparableSale{}
	dropped := 0

	for _, fragment := range fragments {
		sale, ok := s.parseFragment(fragment, query)
		if !ok {
			// Parse failures are recovered locally: the fragment is
			// dropped and logged, never escalated.
			dropped++
			logger.Debug().Str("fragment", truncate(fragment, 120)).Msg("dropped unparsable fragment")
			continue
		}
		if sale.SaleDate.Before(cutoff) {
			// The backend's window handling is best effort; enforce the
			// lookback on the parsed date.
			continue
		}
		comps = append(comps, sale)
	}

	if dropped > 0 && s.metrics != nil {
		s.metrics.FragmentsDropped.Add(ctx, int64(dropped))
	}

	logger.Debug().
		Int("fragments", len(fragments)).
		Int("parsed", len(comps)).
		Int("dropped", dropped).
		Int("window_days", windowDays).
		Msg("parsed search fragments")

	return comps, nil
}

// parseFragment extracts a typed sale record from raw listing text.
// Price and sale date are mandatory; everything else is best effort,
// with the query supplying make and model context when the text is
// ambiguous.
func (s *RetrieverService) parseFragment(fragment string, query *entities.ValuationQuery) (entities.ComparableSale, bool) {
	price, ok := extract.Price(fragment)
	if !ok {
		return entities.ComparableSale{}, false
	}
	saleDate, ok := extract.SaleDate(fragment)
	if !ok {
		return entities.ComparableSale{}, false
	}

	sale := entities.ComparableSale{
		SourceText: fragment,
		Price:      price,
		SaleDate:   saleDate,
	}

	if brand, ok := extract.Brand(fragment); ok {
		sale.Make = brand
	} else {
		sale.Make = query.Make
	}
	if model, ok := extract.Model(fragment, query.Model); ok {
		sale.Model = model
	}
	if year, ok := extract.ModelYear(fragment); ok {
		sale.Year = year
	}
	if hours, ok := extract.Hours(fragment); ok {
		sale.Hours = &hours
	}
	if company, ok := extract.AuctionCompany(fragment); ok {
		sale.AuctionCompany = company
	}

	if sale.Make != "" || sale.Model != "" {
		sale.ItemName = trimJoin(sale.Make, sale.Model)
	}

	return sale, true
}

func trimJoin(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
