package models

// DiscountType represents the kind of reduction a promo code grants.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed_amount"
)

// DiscountDescriptor is the authoritative answer of the promo service.
type DiscountDescriptor struct {
	Type    DiscountType `json:"type"`
	Value   float64      `json:"value"`
	EventID string       `json:"event_id"` // applicability scope
}

// AppliedPromo is a promo code that passed remote validation.
type AppliedPromo struct {
	Code     string             `json:"code"`
	Discount DiscountDescriptor `json:"discount"`
}

// ValidatePromoRequest is the body of POST /promo-codes/validity-check.
type ValidatePromoRequest struct {
	Code    string `json:"code"`
	EventID string `json:"event_id"`
}

// ValidatePromoResponse mirrors the remote validity-check answer.
type ValidatePromoResponse struct {
	Valid   bool         `json:"valid"`
	Code    string       `json:"code"`
	Type    DiscountType `json:"type"`
	Value   float64      `json:"value"`
	EventID string       `json:"event_id"`
	Reason  string       `json:"reason,omitempty"`
	Message string       `json:"message,omitempty"`
}
