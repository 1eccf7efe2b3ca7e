package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"go.uber.org/zap"
)

// ConfirmedHook is called once, outside the session lock, when a session
// reaches confirmed.
type ConfirmedHook func(ctx context.Context, order models.Order, lineup models.Lineup)

// Session is the booking state machine for one checkout attempt. It is the
// single source of truth for the selected lineup, tickets, promo and terms.
//
// Every operation is serialized by mu; the lock is released while a promo
// validation or order submission is on the wire. Each selection change bumps
// generation, and results of requests started under an older generation are
// dropped.
type Session struct {
	mu sync.Mutex

	id    string
	owner string
	event *models.Event

	lineup        *models.Lineup
	selections    []models.TicketSelection
	promo         *models.AppliedPromo
	termsAccepted bool
	status        models.SessionStatus
	generation    uint64
	pricing       models.PriceBreakdown
	order         *models.Order
	lastErr       error
	submitting    bool
	updatedAt     time.Time

	promos      PromoValidator
	orders      OrderSubmitter
	onConfirmed ConfirmedHook
	logger      *zap.Logger
	now         func() time.Time
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithConfirmedHook registers a callback for confirmed orders.
func WithConfirmedHook(hook ConfirmedHook) SessionOption {
	return func(s *Session) { s.onConfirmed = hook }
}

// WithOwner binds the session to the user who opened it.
func WithOwner(userID string) SessionOption {
	return func(s *Session) { s.owner = userID }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func NewSession(id string, event *models.Event, promos PromoValidator, orders OrderSubmitter, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:         id,
		event:      event,
		status:     models.StatusEmpty,
		selections: []models.TicketSelection{},
		promos:     promos,
		orders:     orders,
		logger:     logger.With(zap.String("session_id", id)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pricing = ComputeTotal(event, nil, nil)
	s.updatedAt = s.now()
	return s
}

func (s *Session) ID() string { return s.id }

// Owner is the user the session belongs to; empty when unbound.
func (s *Session) Owner() string { return s.owner }

// Event returns the catalog event the session books.
func (s *Session) Event() *models.Event { return s.event }

// UpdatedAt is the time of the last state change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SelectLineup picks the lineup to book, dropping tickets and promo.
func (s *Session) SelectLineup(lineupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.StatusConfirmed {
		return ErrSessionClosed
	}
	lineup := s.event.Lineup(lineupID)
	if lineup == nil {
		return ErrUnknownLineup
	}

	s.generation++
	s.lineup = lineup
	s.selections = []models.TicketSelection{}
	s.promo = nil
	s.lastErr = nil
	s.status = models.StatusSelecting
	s.reprice()

	s.logger.Debug("Lineup selected", zap.String("lineup_id", lineupID), zap.Uint64("generation", s.generation))
	return nil
}

// SetQuantity sets the quantity of one tier of the selected lineup. A change
// invalidates any applied promo.
func (s *Session) SetQuantity(tierID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.StatusConfirmed {
		return ErrSessionClosed
	}
	if qty < 0 {
		return ErrNegativeQuantity
	}
	if qty > models.MaxTierQuantity {
		return ErrQuantityTooLarge
	}
	if s.lineup == nil {
		return ErrNoLineup
	}
	tier := s.lineup.Tier(tierID)
	if tier == nil {
		return ErrUnknownTier
	}

	found := false
	for i := range s.selections {
		if s.selections[i].TierID == tierID {
			s.selections[i].Quantity = qty
			s.selections[i].UnitPrice = tier.Price
			found = true
			break
		}
	}
	if !found {
		s.selections = append(s.selections, models.TicketSelection{
			LineupID:  s.lineup.ID,
			TierID:    tierID,
			Quantity:  qty,
			UnitPrice: tier.Price,
		})
	}

	s.generation++
	if s.promo != nil {
		s.logger.Info("Promo invalidated by quantity change", zap.String("code", s.promo.Code))
		s.promo = nil
	}
	s.lastErr = nil
	s.reprice()
	s.settle()
	return nil
}

// ApplyPromo validates code remotely and, on success, applies the discount.
// On failure the code is discarded and the session returns to its previous
// state; the error is returned to the caller.
func (s *Session) ApplyPromo(ctx context.Context, code string) error {
	s.mu.Lock()
	if s.status != models.StatusSelecting && s.status != models.StatusReady {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if len(models.PositiveSelections(s.selections)) == 0 {
		s.mu.Unlock()
		return ErrEmptySelection
	}
	prior := s.status
	gen := s.generation
	eventID := s.event.ID
	s.status = models.StatusPromoValidating
	s.touch()
	s.mu.Unlock()

	trimmed := strings.TrimSpace(code)
	discount, err := s.promos.ValidatePromo(ctx, trimmed, eventID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Info("Discarding stale promo validation",
			zap.String("code", trimmed),
			zap.Uint64("started", gen),
			zap.Uint64("current", s.generation),
		)
		return ErrStaleResult
	}

	if err != nil {
		s.status = prior
		s.touch()
		return err
	}

	s.promo = &models.AppliedPromo{Code: trimmed, Discount: *discount}
	s.reprice()
	s.status = models.StatusReady
	return nil
}

// RemovePromo drops the applied promo code, if any.
func (s *Session) RemovePromo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case models.StatusConfirmed:
		return ErrSessionClosed
	case models.StatusSubmitting:
		return ErrAlreadySubmitting
	}
	if s.promo == nil {
		return nil
	}
	s.generation++
	s.promo = nil
	s.reprice()
	s.settle()
	return nil
}

// AcceptTerms records the terms agreement. Pricing is unaffected.
func (s *Session) AcceptTerms(accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.StatusConfirmed {
		return ErrSessionClosed
	}
	s.termsAccepted = accepted
	s.touch()
	return nil
}

// Submit sends the session to the order service. Only one submission may be
// in flight; a concurrent call gets ErrAlreadySubmitting without a request.
func (s *Session) Submit(ctx context.Context) (*models.Order, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrAlreadySubmitting
	}
	switch s.status {
	case models.StatusReady, models.StatusFailed:
	case models.StatusConfirmed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	default:
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if s.lineup == nil {
		s.mu.Unlock()
		return nil, ErrNoLineup
	}
	if len(models.PositiveSelections(s.selections)) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptySelection
	}
	if !s.termsAccepted {
		s.mu.Unlock()
		return nil, ErrTermsNotAccepted
	}

	gen := s.generation
	snapshot := s.snapshotLocked()
	s.submitting = true
	s.status = models.StatusSubmitting
	s.lastErr = nil
	s.touch()
	s.mu.Unlock()

	order, err := s.orders.SubmitOrder(ctx, snapshot)

	s.mu.Lock()
	s.submitting = false

	if gen != s.generation {
		s.logger.Warn("Discarding stale submission result",
			zap.Uint64("started", gen),
			zap.Uint64("current", s.generation),
			zap.Bool("order_created", order != nil),
		)
		s.mu.Unlock()
		return nil, ErrStaleResult
	}

	if err != nil {
		var orderErr *OrderError
		if errors.As(err, &orderErr) && orderErr.Code == CodePromoInvalidated {
			s.logger.Info("Promo rejected at submission, dropping it")
			s.generation++
			s.promo = nil
			s.reprice()
			s.status = models.StatusReady
			s.lastErr = err
			s.touch()
			s.mu.Unlock()
			return nil, err
		}
		s.status = models.StatusFailed
		s.lastErr = err
		s.touch()
		s.mu.Unlock()
		return nil, err
	}

	s.order = order
	s.status = models.StatusConfirmed
	s.touch()
	hook := s.onConfirmed
	lineup := *s.lineup
	confirmed := *order
	s.mu.Unlock()

	if hook != nil {
		hook(ctx, confirmed, lineup)
	}
	return order, nil
}

// CalendarArtifacts builds the invite artifacts of the confirmed order.
func (s *Session) CalendarArtifacts(bookingURL string) (models.CalendarArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusConfirmed || s.order == nil {
		return models.CalendarArtifact{}, ErrNotConfirmed
	}
	return BuildCalendarArtifacts(s.order, s.lineup, bookingURL), nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() models.BookingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.BookingSession {
	snap := models.BookingSession{
		ID:            s.id,
		EventID:       s.event.ID,
		Currency:      s.event.Currency,
		Selections:    append([]models.TicketSelection(nil), s.selections...),
		TermsAccepted: s.termsAccepted,
		Status:        s.status,
		Generation:    s.generation,
		Pricing:       s.pricing,
		UpdatedAt:     s.updatedAt,
	}
	snap.Pricing.Lines = append([]models.PriceLine(nil), s.pricing.Lines...)
	if s.lineup != nil {
		snap.LineupID = s.lineup.ID
	}
	if s.promo != nil {
		p := *s.promo
		snap.Promo = &p
	}
	if s.order != nil {
		o := *s.order
		snap.Order = &o
	}
	if s.lastErr != nil {
		snap.Error = displayError(s.lastErr)
	}
	return snap
}

func displayError(err error) *models.SessionError {
	out := &models.SessionError{Code: ErrorCode(err), Message: err.Error()}
	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		out.Tiers = append([]string(nil), orderErr.Tiers...)
	}
	return out
}

func (s *Session) reprice() {
	var discount *models.DiscountDescriptor
	if s.promo != nil {
		discount = &s.promo.Discount
	}
	s.pricing = ComputeTotal(s.event, s.selections, discount)
	s.touch()
}

// settle moves to ready when a lineup and a positive quantity exist.
func (s *Session) settle() {
	if s.lineup != nil && s.pricing.Ready {
		s.status = models.StatusReady
	} else {
		s.status = models.StatusSelecting
	}
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}
