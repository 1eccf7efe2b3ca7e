package models

// PriceLine is the priced form of one positive ticket selection.
type PriceLine struct {
	TierID    string  `json:"tier_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// PriceBreakdown is the result of pricing a selection.
type PriceBreakdown struct {
	Currency string      `json:"currency"`
	Lines    []PriceLine `json:"lines"`
	Subtotal float64     `json:"subtotal"`
	Discount float64     `json:"discount"`
	Total    float64     `json:"total"`
	Ready    bool        `json:"ready"`
}
