package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/models"
	"github.com/Saroj9823Dangol/event-management-sub001/services"
)

// --- Fixtures ---

func testEvent() *models.Event {
	end := models.NewFloatingTime(time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC))
	return &models.Event{
		ID:       "evt-1",
		Name:     "Summer Fest",
		Currency: "USD",
		Lineups: []models.Lineup{
			{
				ID:        "l1",
				StartDate: models.NewFloatingTime(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)),
				Venue:     models.Venue{Name: "Main Hall"},
				Tiers: []models.Tier{
					{ID: "GA", Name: "General", Price: 50},
					{ID: "VIP", Name: "VIP", Price: 120},
				},
			},
			{
				ID:        "l2",
				StartDate: models.NewFloatingTime(time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)),
				EndDate:   &end,
				Venue:     models.Venue{Name: "Open Air"},
				Tiers:     []models.Tier{{ID: "GA", Name: "General", Price: 40}},
			},
		},
	}
}

func percentOff(v float64) *models.DiscountDescriptor {
	return &models.DiscountDescriptor{Type: models.DiscountTypePercentage, Value: v, EventID: "evt-1"}
}

// --- Mock Gateway ---

type gatewayCall struct {
	Method  string
	Path    string
	Body    interface{}
	Headers http.Header
}

type mockGateway struct {
	mu      sync.Mutex
	calls   []gatewayCall
	respond func(call gatewayCall) (json.RawMessage, error)
}

func (m *mockGateway) Request(ctx context.Context, method, path string, body interface{}, query url.Values) (json.RawMessage, error) {
	return m.RequestWithHeaders(ctx, method, path, body, query, nil)
}

func (m *mockGateway) RequestWithHeaders(_ context.Context, method, path string, body interface{}, _ url.Values, headers http.Header) (json.RawMessage, error) {
	call := gatewayCall{Method: method, Path: path, Body: body, Headers: headers}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
	return m.respond(call)
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- Mock Promo Validator ---

type stubPromos struct {
	mu       sync.Mutex
	discount *models.DiscountDescriptor
	err      error
	gate     chan struct{}
	started  chan struct{}
	calls    int
}

func (s *stubPromos) ValidatePromo(_ context.Context, _, _ string) (*models.DiscountDescriptor, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	d := *s.discount
	return &d, nil
}

// --- Mock Order Submitter ---

type stubOrders struct {
	mu       sync.Mutex
	order    *models.Order
	err      error
	gate     chan struct{}
	started  chan struct{}
	received []models.BookingSession
}

func (s *stubOrders) SubmitOrder(_ context.Context, session models.BookingSession) (*models.Order, error) {
	s.mu.Lock()
	s.received = append(s.received, session)
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	o := *s.order
	return &o, nil
}

func (s *stubOrders) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func confirmedOrder() *models.Order {
	return &models.Order{
		ID:        "ord-1",
		EventID:   "evt-1",
		EventName: "Summer Fest",
		LineupID:  "l1",
		Items:     []models.LineItem{{TierID: "GA", Quantity: 2, UnitPrice: 50, Currency: "USD"}},
		Total:     100,
		Currency:  "USD",
		CreatedAt: time.Date(2025, 5, 20, 10, 30, 0, 0, time.UTC),
	}
}

// --- Mock Metrics ---

type recordedMetric struct {
	Name string
	Dims map[string]string
}

type fakeMetrics struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (f *fakeMetrics) RecordCount(_ context.Context, name string, dims map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = append(f.metrics, recordedMetric{Name: name, Dims: dims})
	return nil
}

func (f *fakeMetrics) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.metrics))
	for _, m := range f.metrics {
		out = append(out, m.Name)
	}
	return out
}

// --- In-memory receipt / idempotency store ---

type memoryStore struct {
	mu       sync.Mutex
	receipts map[string]*models.OrderReceipt
	idem     map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{receipts: map[string]*models.OrderReceipt{}, idem: map[string]string{}}
}

func (m *memoryStore) SaveReceipt(_ context.Context, r *models.OrderReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[r.Order.ID] = r
	return nil
}

func (m *memoryStore) GetReceipt(_ context.Context, orderID string) (*models.OrderReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receipts[orderID], nil
}

func (m *memoryStore) GetIdempotency(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idem[key], nil
}

func (m *memoryStore) SetIdempotency(_ context.Context, key, orderID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idem[key] = orderID
	return nil
}

// --- Mock Catalog ---

type stubCatalog struct {
	event *models.Event
}

func (s *stubCatalog) GetEvent(_ context.Context, id string) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, services.ErrEventNotFound
	}
	return s.event, nil
}

// --- Mock Publisher ---

type fakePublisher struct {
	mu     sync.Mutex
	events []models.BookingConfirmedEvent
	err    error
}

func (f *fakePublisher) PublishBookingConfirmed(_ context.Context, e models.BookingConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}
