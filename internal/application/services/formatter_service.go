package services

import (
	"fmt"
	"strings"

	"github.com/agrivalor/equipment-valuation/internal/domain/entities"
)

// FormatterService maps the valuator's internal result onto the
// published response schema. It is a pure, total mapping: nothing in
// here can fail, and fields the valuator skipped are omitted rather
// than rendered as zero.
type FormatterService struct{}

// NewFormatterService creates a new formatter service
func NewFormatterService() *FormatterService {
	return &FormatterService{}
}

// Format produces the external response, echoing the request context and
// rendering the structured reasoning into prose.
func (s *FormatterService) Format(query *entities.ValuationQuery, result *entities.ValuationResult) *entities.ValuationResponse {
	sales := make([]entities.ComparableSaleView, len(result.ComparableSalesUsed))
	for i := range result.ComparableSalesUsed {
		sale := &result.ComparableSalesUsed[i]
		sales[i] = entities.ComparableSaleView{
			SaleID:         sale.SaleID(),
			Price:          sale.Price,
			SaleDate:       sale.SaleDate.Format("2006-01-02"),
			SourceText:     sale.SourceText,
			ItemName:       sale.ItemName,
			AuctionCompany: sale.AuctionCompany,
		}
	}

	adjustments := make([]entities.Adjustment, len(result.Adjustments))
	copy(adjustments, result.Adjustments)

	return &entities.ValuationResponse{
		FairMarketValue: result.FairMarketValue,
		Confidence:      string(result.Confidence),
		ComparableSales: sales,
		Adjustments:     adjustments,
		PriceRange:      result.PriceRange,
		Explanation:     s.explanation(query, result),
		Query: entities.ValuationQueryContext{
			Make:      query.Make,
			Model:     query.Model,
			Year:      query.Year,
			Condition: string(query.Condition),
		},
	}
}

// explanation templates the adjustments, sample count and confidence
// into readable prose. Deterministic given the result.
func (s *FormatterService) explanation(query *entities.ValuationQuery, result *entities.ValuationResult) string {
	var b strings.Builder

	count := len(result.ComparableSalesUsed)
	subject := strings.TrimSpace(fmt.Sprintf("%s %s", query.Make, query.Model))
	if query.Year > 0 {
		subject = fmt.Sprintf("%d %s", query.Year, subject)
	}

	fmt.Fprintf(&b, "Estimated fair market value of %s for a %s in %s condition, based on %d comparable auction sale%s",
		formatMoney(result.FairMarketValue), subject, query.Condition, count, plural(count))
	fmt.Fprintf(&b, " priced between %s and %s (average %s, median %s).",
		formatMoney(result.PriceRange.Low), formatMoney(result.PriceRange.High),
		formatMoney(result.Reasoning.AveragePrice), formatMoney(result.Reasoning.BaseValue))

	if result.Reasoning.OutliersRemoved > 0 {
		fmt.Fprintf(&b, " %d statistical outlier%s outside the interquartile fence %s excluded before valuing.",
			result.Reasoning.OutliersRemoved, plural(result.Reasoning.OutliersRemoved),
			wasWere(result.Reasoning.OutliersRemoved))
	}

	for _, adj := range result.Adjustments {
		switch adj.Reason {
		case AdjustmentAge:
			fmt.Fprintf(&b, " Age adjustment of %s applied for the model year relative to the comparable sales.", formatSignedMoney(adj.Delta))
		case AdjustmentUsage:
			fmt.Fprintf(&b, " Usage adjustment of %s applied for hours of use relative to the comparable sales.", formatSignedMoney(adj.Delta))
		case AdjustmentCondition:
			fmt.Fprintf(&b, " Condition adjustment of %s applied for the stated %s condition.", formatSignedMoney(adj.Delta), query.Condition)
		default:
			fmt.Fprintf(&b, " Adjustment %q of %s applied.", adj.Reason, formatSignedMoney(adj.Delta))
		}
	}

	switch result.Confidence {
	case entities.ConfidenceLow:
		b.WriteString(" Confidence is low due to limited comparable sales data or a wide price spread;" +
			" the estimate is still derived entirely from actual auction results, not placeholder values.")
	case entities.ConfidenceHigh:
		fmt.Fprintf(&b, " Confidence is high: %d comparable sales with a relative price spread of %.1f%%.",
			count, result.Reasoning.RelativeSpread*100)
	default:
		fmt.Fprintf(&b, " Confidence is medium given %d comparable sales with a relative price spread of %.1f%%.",
			count, result.Reasoning.RelativeSpread*100)
	}

	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}

// formatMoney renders a dollar amount with thousands separators.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents >= 100 {
		whole++
		cents -= 100
	}

	digits := fmt.Sprintf("%d", whole)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	out := "$" + grouped.String()
	if cents > 0 {
		out = fmt.Sprintf("%s.%02d", out, cents)
	}
	if neg {
		out = "-" + out
	}
	return out
}

func formatSignedMoney(v float64) string {
	if v >= 0 {
		return "+" + formatMoney(v)
	}
	return formatMoney(v)
}
