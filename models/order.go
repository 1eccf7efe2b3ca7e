package models

import "time"

// LineItem is one priced tier of a confirmed order.
type LineItem struct {
	TierID    string  `json:"tier_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

// Order is created by the remote order API and never modified locally.
type Order struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	EventName string     `json:"event_name"`
	LineupID  string     `json:"lineup_id"`
	Items     []LineItem `json:"items"`
	PromoCode string     `json:"promo_code,omitempty"`
	Discount  float64    `json:"discount"`
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateOrderItem is one entry of the order-creation request.
type CreateOrderItem struct {
	TierID   string `json:"tier_id"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	EventID   string            `json:"event_id"`
	LineupID  string            `json:"lineup_id"`
	Items     []CreateOrderItem `json:"items"`
	PromoCode string            `json:"promo_code,omitempty"`
}

// CreateOrderResponse wraps the created order.
type CreateOrderResponse struct {
	Order Order `json:"order"`
}

// OrderErrorResponse is the error body returned by POST /orders.
type OrderErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Tiers   []string `json:"tiers,omitempty"`
}

// OrderReceipt is a confirmed order kept for later calendar regeneration.
type OrderReceipt struct {
	Order   Order     `json:"order"`
	Lineup  Lineup    `json:"lineup"`
	UserID  string    `json:"user_id,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// BookingConfirmedEvent is published when a session reaches confirmed.
type BookingConfirmedEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	EventID   string    `json:"event_id"`
	LineupID  string    `json:"lineup_id"`
	UserID    string    `json:"user_id,omitempty"`
	Tickets   int       `json:"tickets"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	PromoCode string    `json:"promo_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
