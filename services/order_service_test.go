package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"
	"github.com/Saroj9823Dangol/event-management-sub001/models"
	"github.com/Saroj9823Dangol/event-management-sub001/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readySession() models.BookingSession {
	return models.BookingSession{
		ID:            "sess-1",
		EventID:       "evt-1",
		Currency:      "USD",
		LineupID:      "l1",
		Selections:    []models.TicketSelection{ga(2, 50), {LineupID: "l1", TierID: "VIP", Quantity: 0, UnitPrice: 120}},
		Promo:         &models.AppliedPromo{Code: "SAVE10", Discount: *percentOff(10)},
		TermsAccepted: true,
		Status:        models.StatusReady,
		Generation:    4,
	}
}

func orderResponse() json.RawMessage {
	b, _ := json.Marshal(models.CreateOrderResponse{Order: *confirmedOrder()})
	return b
}

func statusError(code int, body string) error {
	e := &clients.HTTPError{Kind: clients.KindStatus, StatusCode: code, RawBody: []byte(body)}
	var parsed map[string]interface{}
	if json.Unmarshal([]byte(body), &parsed) == nil {
		e.Body = parsed
	}
	return e
}

func orderCode(t *testing.T, err error) *services.OrderError {
	t.Helper()
	var oe *services.OrderError
	require.True(t, errors.As(err, &oe), "expected OrderError, got %v", err)
	return oe
}

func TestSubmitOrder_Success(t *testing.T) {
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return orderResponse(), nil }}
	store := newMemoryStore()
	pub := &fakePublisher{}
	metrics := &fakeMetrics{}
	svc := services.NewOrderService(gw, store, pub, metrics, time.Hour, zap.NewNop())

	in := http.Header{}
	in.Set("X-User-ID", "user-7")
	ctx := clients.WithForwardedHeaders(context.Background(), in)

	order, err := svc.SubmitOrder(ctx, readySession())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)

	require.Equal(t, 1, gw.callCount())
	call := gw.calls[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/orders", call.Path)
	assert.Equal(t, "sess-1:4", call.Headers.Get("Idempotency-Key"))
	assert.Equal(t, models.CreateOrderRequest{
		EventID:   "evt-1",
		LineupID:  "l1",
		Items:     []models.CreateOrderItem{{TierID: "GA", Quantity: 2}},
		PromoCode: "SAVE10",
	}, call.Body)

	assert.Equal(t, "ord-1", store.idem["sess-1:4"])
	require.Len(t, pub.events, 1)
	assert.Equal(t, "booking_confirmed", pub.events[0].EventType)
	assert.Equal(t, "user-7", pub.events[0].UserID)
	assert.Equal(t, 2, pub.events[0].Tickets)
	assert.Equal(t, []string{services.MetricOrdersCreated}, metrics.names())
}

func TestSubmitOrder_SoldOut(t *testing.T) {
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) {
		return nil, statusError(409, `{"error":"sold_out","tiers":["VIP"],"message":"VIP is gone"}`)
	}}
	metrics := &fakeMetrics{}
	svc := services.NewOrderService(gw, nil, nil, metrics, time.Hour, zap.NewNop())

	order, err := svc.SubmitOrder(context.Background(), readySession())
	assert.Nil(t, order)
	oe := orderCode(t, err)
	assert.Equal(t, services.CodeSoldOut, oe.Code)
	assert.Equal(t, []string{"VIP"}, oe.Tiers)
	assert.Equal(t, []string{services.MetricOrdersFailed}, metrics.names())
}

func TestSubmitOrder_ErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"promo invalidated", statusError(422, `{"error":"promo_invalidated"}`), services.CodePromoInvalidated},
		{"payment declined body", statusError(400, `{"error":"payment_declined"}`), services.CodePaymentDeclined},
		{"bare 409", statusError(409, ``), services.CodeSoldOut},
		{"bare 402", statusError(402, `{}`), services.CodePaymentDeclined},
		{"server error", statusError(500, `oops`), services.CodeNetworkFailure},
		{"network", &clients.HTTPError{Kind: clients.KindNetwork, Err: errors.New("reset")}, services.CodeNetworkFailure},
		{"parse", &clients.HTTPError{Kind: clients.KindParse, Err: errors.New("bad json")}, services.CodeNetworkFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return nil, tc.err }}
			svc := services.NewOrderService(gw, nil, nil, nil, time.Hour, zap.NewNop())

			_, err := svc.SubmitOrder(context.Background(), readySession())
			assert.Equal(t, tc.code, orderCode(t, err).Code)
		})
	}
}

func TestSubmitOrder_NetworkFailureWrapsHTTPError(t *testing.T) {
	cause := &clients.HTTPError{Kind: clients.KindNetwork, Err: context.DeadlineExceeded}
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return nil, cause }}
	svc := services.NewOrderService(gw, nil, nil, nil, time.Hour, zap.NewNop())

	_, err := svc.SubmitOrder(context.Background(), readySession())

	var httpErr *clients.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.True(t, httpErr.IsTimeout())
}

func TestSubmitOrder_MissingOrderID(t *testing.T) {
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return json.RawMessage(`{"order":{}}`), nil }}
	svc := services.NewOrderService(gw, nil, nil, nil, time.Hour, zap.NewNop())

	_, err := svc.SubmitOrder(context.Background(), readySession())
	assert.Equal(t, services.CodeNetworkFailure, orderCode(t, err).Code)
}

func TestSubmitOrder_IdempotentReplay(t *testing.T) {
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return orderResponse(), nil }}
	store := newMemoryStore()
	store.idem["sess-1:4"] = "ord-1"
	store.receipts["ord-1"] = &models.OrderReceipt{Order: *confirmedOrder()}
	svc := services.NewOrderService(gw, store, nil, nil, time.Hour, zap.NewNop())

	order, err := svc.SubmitOrder(context.Background(), readySession())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, 0, gw.callCount())
}

func TestSubmitOrder_PublishFailureIsNotFatal(t *testing.T) {
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return orderResponse(), nil }}
	pub := &fakePublisher{err: errors.New("sns down")}
	svc := services.NewOrderService(gw, nil, pub, nil, time.Hour, zap.NewNop())

	order, err := svc.SubmitOrder(context.Background(), readySession())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Len(t, pub.events, 1)
}

func TestSubmitOrder_PanicsOnPreconditionViolation(t *testing.T) {
	gw := &mockGateway{respond: func(gatewayCall) (json.RawMessage, error) { return orderResponse(), nil }}
	svc := services.NewOrderService(gw, nil, nil, nil, time.Hour, zap.NewNop())

	noLineup := readySession()
	noLineup.LineupID = ""
	assert.Panics(t, func() { _, _ = svc.SubmitOrder(context.Background(), noLineup) })

	noTerms := readySession()
	noTerms.TermsAccepted = false
	assert.Panics(t, func() { _, _ = svc.SubmitOrder(context.Background(), noTerms) })

	noTickets := readySession()
	noTickets.Selections = []models.TicketSelection{ga(0, 50)}
	assert.Panics(t, func() { _, _ = svc.SubmitOrder(context.Background(), noTickets) })

	assert.Equal(t, 0, gw.callCount())
}

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "sess-1:4", services.IdempotencyKey(readySession()))
}
