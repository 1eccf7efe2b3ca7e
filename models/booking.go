package models

import "time"

// SessionStatus is the state of a booking session.
type SessionStatus string

const (
	StatusEmpty           SessionStatus = "empty"
	StatusSelecting       SessionStatus = "selecting"
	StatusPromoValidating SessionStatus = "promo_validating"
	StatusReady           SessionStatus = "ready"
	StatusSubmitting      SessionStatus = "submitting"
	StatusConfirmed       SessionStatus = "confirmed"
	StatusFailed          SessionStatus = "failed"
)

// MaxTierQuantity caps the tickets of one tier in a single booking.
const MaxTierQuantity = 100

// TicketSelection is a requested quantity of one tier of the selected lineup.
type TicketSelection struct {
	LineupID  string  `json:"lineup_id"`
	TierID    string  `json:"tier_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// BookingSession is a point-in-time copy of a session's state.
type BookingSession struct {
	ID            string            `json:"id"`
	EventID       string            `json:"event_id"`
	Currency      string            `json:"currency"`
	LineupID      string            `json:"lineup_id,omitempty"`
	Selections    []TicketSelection `json:"selections"`
	Promo         *AppliedPromo     `json:"promo,omitempty"`
	TermsAccepted bool              `json:"terms_accepted"`
	Status        SessionStatus     `json:"status"`
	Generation    uint64            `json:"generation"`
	Pricing       PriceBreakdown    `json:"pricing"`
	Order         *Order            `json:"order,omitempty"`
	Error         *SessionError     `json:"error,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SessionError is the last error retained for display.
type SessionError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Tiers   []string `json:"tiers,omitempty"`
}

// PositiveSelections returns the selections with quantity > 0, in order.
func PositiveSelections(selections []TicketSelection) []TicketSelection {
	out := make([]TicketSelection, 0, len(selections))
	for _, s := range selections {
		if s.Quantity > 0 {
			out = append(out, s)
		}
	}
	return out
}
