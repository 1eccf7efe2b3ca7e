package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Saroj9823Dangol/event-management-sub001/models"
)

// ValidationError codes.
const (
	CodeInvalidCode    = "invalid_code"
	CodeExpired        = "expired"
	CodeEventMismatch  = "event_mismatch"
	CodeNetworkFailure = "network_failure"
)

// OrderError codes.
const (
	CodeSoldOut          = "sold_out"
	CodePromoInvalidated = "promo_invalidated"
	CodePaymentDeclined  = "payment_declined"
)

// ValidationError is a user-correctable promo failure.
type ValidationError struct {
	Code    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// OrderError is a transactional failure reported by order submission.
type OrderError struct {
	Code    string
	Message string
	Tiers   []string // set for sold_out
	Err     error
}

func (e *OrderError) Error() string {
	msg := e.Code
	if len(e.Tiers) > 0 {
		msg += fmt.Sprintf(" (tiers: %s)", strings.Join(e.Tiers, ", "))
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// SessionError is a rejected state-machine operation.
type SessionError struct {
	Code    string
	Message string
}

func (e *SessionError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	return ok && t.Code == e.Code
}

var (
	ErrAlreadySubmitting = &SessionError{Code: "already_submitting", Message: "an order submission is already in flight"}
	ErrInvalidTransition = &SessionError{Code: "invalid_transition", Message: "operation not allowed in the current state"}
	ErrNoLineup          = &SessionError{Code: "no_lineup", Message: "select a lineup first"}
	ErrUnknownLineup     = &SessionError{Code: "unknown_lineup", Message: "lineup does not belong to this event"}
	ErrUnknownTier       = &SessionError{Code: "unknown_tier", Message: "tier does not belong to the selected lineup"}
	ErrNegativeQuantity  = &SessionError{Code: "negative_quantity", Message: "quantity must be >= 0"}
	ErrQuantityTooLarge  = &SessionError{Code: "quantity_too_large", Message: fmt.Sprintf("quantity must be <= %d", models.MaxTierQuantity)}
	ErrEmptySelection    = &SessionError{Code: "empty_selection", Message: "select at least one ticket"}
	ErrTermsNotAccepted  = &SessionError{Code: "terms_not_accepted", Message: "terms must be accepted before submitting"}
	ErrStaleResult       = &SessionError{Code: "stale_result", Message: "selection changed while the request was in flight"}
	ErrSessionClosed     = &SessionError{Code: "session_closed", Message: "session is already confirmed"}
	ErrSessionNotFound   = &SessionError{Code: "session_not_found", Message: "booking session not found"}
	ErrNotConfirmed      = &SessionError{Code: "not_confirmed", Message: "session has no confirmed order"}
)

// ErrorCode returns the stable code of any error produced by this package.
func ErrorCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe.Code
	}
	var se *SessionError
	if errors.As(err, &se) {
		return se.Code
	}
	return "internal_error"
}
