package entities

// ValuationResponse is the published response schema. It is fixed and
// versioned by shape: optional fields are omitted, never rendered as zero.
type ValuationResponse struct {
	FairMarketValue float64               `json:"fair_market_value"`
	Confidence      string                `json:"confidence"`
	ComparableSales []ComparableSaleView  `json:"comparable_sales"`
	Adjustments     []Adjustment          `json:"adjustments"`
	PriceRange      PriceRange            `json:"price_range"`
	Explanation     string                `json:"explanation"`
	Query           ValuationQueryContext `json:"query"`
}

// ComparableSaleView is the simplified comp record exposed to callers.
type ComparableSaleView struct {
	SaleID         string  `json:"sale_id"`
	Price          float64 `json:"price"`
	SaleDate       string  `json:"sale_date"`
	SourceText     string  `json:"source_text"`
	ItemName       string  `json:"item_name,omitempty"`
	AuctionCompany string  `json:"auction_company,omitempty"`
}

// ValuationQueryContext echoes the request the estimate answers.
type ValuationQueryContext struct {
	Make      string `json:"make"`
	Model     string `json:"model"`
	Year      int    `json:"year"`
	Condition string `json:"condition"`
}
