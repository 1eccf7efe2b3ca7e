package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrReceiptNotFound = errors.New("order receipt not found")

// ReceiptStore keeps confirmed orders around after their session is gone.
type ReceiptStore interface {
	SaveReceipt(ctx context.Context, receipt *models.OrderReceipt) error
	GetReceipt(ctx context.Context, orderID string) (*models.OrderReceipt, error)
}

// SessionManager owns the live booking sessions of this process.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog  EventCatalog
	promos   PromoValidator
	orders   OrderSubmitter
	receipts ReceiptStore
	metrics  MetricsRecorder
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionManager(
	catalog EventCatalog,
	promos PromoValidator,
	orders OrderSubmitter,
	receipts ReceiptStore,
	metrics MetricsRecorder,
	ttl time.Duration,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		promos:   promos,
		orders:   orders,
		receipts: receipts,
		metrics:  metrics,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Open starts a new session for eventID owned by userID.
func (m *SessionManager) Open(ctx context.Context, eventID, userID string) (*Session, error) {
	event, err := m.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	session := NewSession(id, event, m.promos, m.orders, m.logger,
		WithOwner(userID),
		WithConfirmedHook(func(ctx context.Context, order models.Order, lineup models.Lineup) {
			m.saveReceipt(ctx, userID, order, lineup)
		}),
		WithClock(m.now),
	)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	recordCount(ctx, m.metrics, m.logger, MetricSessionsOpened, map[string]string{"EventID": event.ID})
	m.logger.Info("Booking session opened",
		zap.String("session_id", id),
		zap.String("event_id", event.ID),
		zap.String("user_id", userID),
	)
	return session, nil
}

// Get returns session id when it belongs to userID. Sessions of other
// users are reported as not found.
func (m *SessionManager) Get(id, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok || session.Owner() != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close destroys a session. The UI calls it once the user has acknowledged
// the outcome.
func (m *SessionManager) Close(id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || session.Owner() != userID {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Receipt returns the stored receipt of a confirmed order placed by userID.
func (m *SessionManager) Receipt(ctx context.Context, orderID, userID string) (*models.OrderReceipt, error) {
	if m.receipts == nil {
		return nil, ErrReceiptNotFound
	}
	receipt, err := m.receipts.GetReceipt(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if receipt == nil || receipt.UserID != userID {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

func (m *SessionManager) saveReceipt(ctx context.Context, userID string, order models.Order, lineup models.Lineup) {
	if m.receipts == nil {
		return
	}
	receipt := &models.OrderReceipt{Order: order, Lineup: lineup, UserID: userID, SavedAt: m.now().UTC()}
	if err := m.receipts.SaveReceipt(ctx, receipt); err != nil {
		m.logger.Error("Failed to save order receipt", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// EvictIdle drops sessions untouched for longer than the TTL. Sessions with
// a submission in flight are kept.
func (m *SessionManager) EvictIdle(ctx context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var evicted []string
	for id, session := range m.sessions {
		snap := session.Snapshot()
		if snap.Status == models.StatusSubmitting || snap.UpdatedAt.After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		evicted = append(evicted, id)
	}
	m.mu.Unlock()

	for range evicted {
		recordCount(ctx, m.metrics, m.logger, MetricSessionsExpired, nil)
	}
	if len(evicted) > 0 {
		m.logger.Info("Evicted idle booking sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run evicts idle sessions periodically until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(ctx)
		}
	}
}
