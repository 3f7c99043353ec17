package entities

import "time"

// ComparableSale is one historical auction record recovered from a raw
// search fragment. Price and SaleDate are guaranteed populated for every
// record handed to the valuator; fragments that fail to yield either are
// dropped during retrieval.
type ComparableSale struct {
	SourceText     string    `json:"source_text"`
	Make           string    `json:"make,omitempty"`
	Model          string    `json:"model,omitempty"`
	Year           int       `json:"year,omitempty"`
	Price          float64   `json:"price"`
	SaleDate       time.Time `json:"sale_date"`
	Hours          *float64  `json:"hours,omitempty"`
	ItemName       string    `json:"item_name,omitempty"`
	AuctionCompany string    `json:"auction_company,omitempty"`
}

// SaleID labels the comp the way auction reports do: item plus auction house.
func (s *ComparableSale) SaleID() string {
	name := s.ItemName
	if name == "" {
		name = "Unknown Item"
	}
	company := s.AuctionCompany
	if company == "" {
		company = "Unknown Auction"
	}
	return name + " - " + company
}
