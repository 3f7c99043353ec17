package services

import (
	"context"

	"github.com/agrivalor/equipment-valuation/internal/domain/entities"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
	"github.com/agrivalor/equipment-valuation/pkg/config"
	apperrors "github.com/agrivalor/equipment-valuation/pkg/errors"
)

// Adjustment reasons, in application order.
const (
	AdjustmentAge       = "age"
	AdjustmentUsage     = "usage"
	AdjustmentCondition = "condition"
)

// minSetForOutlierRemoval is the smallest candidate set on which IQR
// removal is statistically meaningful.
const minSetForOutlierRemoval = 5

// ValuatorService derives a fair market value from a cleaned set of
// comparable sales. It is pure in-memory computation; every number it
// produces traces back to retrieved sale prices.
type ValuatorService struct {
	cfg config.ValuationConfig
}

// NewValuatorService creates a new valuator service
func NewValuatorService(cfg config.ValuationConfig) *ValuatorService {
	return &ValuatorService{cfg: cfg}
}

// Value computes the valuation result for the query over the retrieved
// comparable set. Fails with an insufficient-data error if no usable
// records remain, which the retriever's floor guarantee should prevent.
func (s *ValuatorService) Value(ctx context.Context, query *entities.ValuationQuery, comps []entities.ComparableSale) (*entities.ValuationResult, error) {
	logger := observability.LoggerFromContext(ctx)

	if len(comps) == 0 {
		return nil, apperrors.NewInsufficientDataError("no usable comparable sales after cleaning")
	}

	survivors, removed := s.removeOutliers(comps)
	if removed > 0 {
		logger.Info().
			Int("removed", removed).
			Int("remaining", len(survivors)).
			Msg("removed price outliers")
	}

	prices := make([]float64, len(survivors))
	for i, c := range survivors {
		prices[i] = c.Price
	}

	base := median(prices)
	adjusted := base
	adjustments := []entities.Adjustment{}

	if delta, ok := s.ageAdjustment(base, query, survivors); ok {
		adjustments = append(adjustments, entities.Adjustment{Reason: AdjustmentAge, Delta: delta})
		adjusted += delta
	}
	if delta, ok := s.usageAdjustment(base, query, survivors); ok {
		adjustments = append(adjustments, entities.Adjustment{Reason: AdjustmentUsage, Delta: delta})
		adjusted += delta
	}

	// Condition multiplier is applied last, against the already adjusted
	// value, and recorded as the delta it produced.
	conditionDelta := round2(adjusted * (query.Condition.Multiplier() - 1))
	adjustments = append(adjustments, entities.Adjustment{Reason: AdjustmentCondition, Delta: conditionDelta})
	adjusted += conditionDelta

	fmv := roundToHundred(adjusted)

	spread := 0.0
	if base > 0 {
		spread = stddev(prices) / base
	}
	confidence := s.confidence(len(survivors), spread)

	logger.Info().
		Float64("base_value", base).
		Float64("fmv", fmv).
		Int("comps_used", len(survivors)).
		Float64("relative_spread", spread).
		Str("confidence", string(confidence)).
		Msg("valuation computed")

	// Range bounds follow the surviving distribution, rescaled by the
	// same factor the adjustments applied to the base value.
	scale := 1.0
	if base > 0 {
		scale = fmv / base
	}
	low, high := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}

	return &entities.ValuationResult{
		FairMarketValue:     fmv,
		Confidence:          confidence,
		ComparableSalesUsed: survivors,
		Adjustments:         adjustments,
		PriceRange: entities.PriceRange{
			Low:  round2(low * scale),
			High: round2(high * scale),
		},
		Reasoning: entities.ValuationReasoning{
			BaseValue:       base,
			OutliersRemoved: removed,
			RelativeSpread:  spread,
			AveragePrice:    round2(mean(prices)),
		},
	}, nil
}

// removeOutliers drops prices outside the 1.5 IQR fence. Removal only
// runs on sets of at least five records, and is skipped entirely rather
// than partially applied when it would leave fewer than the retrieval
// floor of comparables.
func (s *ValuatorService) removeOutliers(comps []entities.ComparableSale) ([]entities.ComparableSale, int) {
	if len(comps) < minSetForOutlierRemoval {
		return comps, 0
	}

	prices := make([]float64, len(comps))
	for i, c := range comps {
		prices[i] = c.Price
	}

	q1 := percentile(prices, 25)
	q3 := percentile(prices, 75)
	iqr := q3 - q1
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr

	survivors := []entities.ComparableSale{}
	for _, c := range comps {
		if c.Price >= lowerBound && c.Price <= upperBound {
			survivors = append(survivors, c)
		}
	}

	if len(survivors) < s.cfg.MinComparables {
		return comps, 0
	}
	return survivors, len(comps) - len(survivors)
}

// ageAdjustment shifts value by the configured rate per model year
// between the queried equipment and the comparable set's median year.
// Skipped when either side lacks a year.
func (s *ValuatorService) ageAdjustment(base float64, query *entities.ValuationQuery, comps []entities.ComparableSale) (float64, bool) {
	if query.Year == 0 {
		return 0, false
	}
	years := []float64{}
	for _, c := range comps {
		if c.Year > 0 {
			years = append(years, float64(c.Year))
		}
	}
	if len(years) == 0 {
		return 0, false
	}
	diff := float64(query.Year) - median(years)
	return round2(base * s.cfg.AgeRatePerYear * diff), true
}

// usageAdjustment shifts value by the configured rate per thousand hours
// between the queried equipment and the comparable set's median hours.
// Higher relative usage shifts value down. Skipped when hours are
// unavailable on either side.
func (s *ValuatorService) usageAdjustment(base float64, query *entities.ValuationQuery, comps []entities.ComparableSale) (float64, bool) {
	if query.Hours == nil {
		return 0, false
	}
	hours := []float64{}
	for _, c := range comps {
		if c.Hours != nil {
			hours = append(hours, *c.Hours)
		}
	}
	if len(hours) == 0 {
		return 0, false
	}
	diff := median(hours) - *query.Hours
	return round2(base * s.cfg.UsageRatePer1kHrs * diff / 1000), true
}

// confidence grades the estimate from sample size and relative spread.
// A set at the retrieval floor is never better than low, and high
// requires both a larger sample and a tight distribution.
func (s *ValuatorService) confidence(count int, spread float64) entities.Confidence {
	if count <= s.cfg.MinComparables || spread >= s.cfg.LowSpreadCutoff {
		return entities.ConfidenceLow
	}
	if count >= s.cfg.MinComparables+1 && spread < s.cfg.HighSpreadCutoff {
		return entities.ConfidenceHigh
	}
	return entities.ConfidenceMedium
}
