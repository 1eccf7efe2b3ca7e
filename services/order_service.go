package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"
	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"go.uber.org/zap"
)

const ordersPath = "/orders"

// Business metric names.
const (
	MetricOrdersCreated   = "OrdersCreated"
	MetricOrdersFailed    = "OrdersFailed"
	MetricPromoValidated  = "PromoValidated"
	MetricPromoRejected   = "PromoRejected"
	MetricSessionsOpened  = "BookingSessionsOpened"
	MetricSessionsExpired = "BookingSessionsExpired"
)

// OrderSubmitter creates an order from a finalized session.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, session models.BookingSession) (*models.Order, error)
}

// OrderGateway is the part of the HTTP gateway used for order creation.
type OrderGateway interface {
	RequestWithHeaders(ctx context.Context, method, path string, body interface{}, query url.Values, headers http.Header) (json.RawMessage, error)
}

// IdempotencyStore remembers which order an idempotency key produced.
type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, key string) (string, error)
	SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error
	GetReceipt(ctx context.Context, orderID string) (*models.OrderReceipt, error)
}

// BookingEventPublisher publishes booking lifecycle events.
type BookingEventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error
}

// MetricsRecorder records business counters.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

type OrderService struct {
	gateway   OrderGateway
	idem      IdempotencyStore
	publisher BookingEventPublisher
	metrics   MetricsRecorder
	idemTTL   time.Duration
	logger    *zap.Logger
}

func NewOrderService(
	gateway OrderGateway,
	idem IdempotencyStore,
	publisher BookingEventPublisher,
	metrics MetricsRecorder,
	idemTTL time.Duration,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		gateway:   gateway,
		idem:      idem,
		publisher: publisher,
		metrics:   metrics,
		idemTTL:   idemTTL,
		logger:    logger,
	}
}

// IdempotencyKey identifies one submission attempt of a session selection.
func IdempotencyKey(session models.BookingSession) string {
	return fmt.Sprintf("%s:%d", session.ID, session.Generation)
}

// SubmitOrder posts the session to the order-creation endpoint. The session
// must hold a lineup, a positive ticket quantity and accepted terms; callers
// violating this have a bug and the call panics.
func (s *OrderService) SubmitOrder(ctx context.Context, session models.BookingSession) (*models.Order, error) {
	items := assertSubmittable(session)

	key := IdempotencyKey(session)
	if order := s.cachedOrder(ctx, key); order != nil {
		s.logger.Info("Order already created for idempotency key",
			zap.String("idempotency_key", key),
			zap.String("order_id", order.ID),
		)
		return order, nil
	}

	req := models.CreateOrderRequest{
		EventID:  session.EventID,
		LineupID: session.LineupID,
		Items:    items,
	}
	if session.Promo != nil {
		req.PromoCode = session.Promo.Code
	}

	headers := http.Header{}
	headers.Set("Idempotency-Key", key)

	raw, err := s.gateway.RequestWithHeaders(ctx, http.MethodPost, ordersPath, req, nil, headers)
	if err != nil {
		orderErr := classifyOrderError(err)
		s.logger.Warn("Order submission failed",
			zap.String("session_id", session.ID),
			zap.String("code", orderErr.Code),
			zap.Strings("tiers", orderErr.Tiers),
			zap.Error(err),
		)
		s.record(ctx, MetricOrdersFailed, map[string]string{"Reason": orderErr.Code})
		return nil, orderErr
	}

	var resp models.CreateOrderResponse
	if err := clients.DecodeJSON(raw, &resp); err != nil || resp.Order.ID == "" {
		if err == nil {
			err = &clients.HTTPError{Kind: clients.KindParse, RawBody: raw, Err: errors.New("order id missing")}
		}
		s.record(ctx, MetricOrdersFailed, map[string]string{"Reason": CodeNetworkFailure})
		return nil, &OrderError{Code: CodeNetworkFailure, Message: "unreadable order response", Err: err}
	}
	order := resp.Order

	if s.idem != nil {
		if err := s.idem.SetIdempotency(ctx, key, order.ID, s.idemTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.String("idempotency_key", key), zap.Error(err))
		}
	}

	s.record(ctx, MetricOrdersCreated, map[string]string{"EventID": order.EventID})
	s.publishConfirmed(ctx, session, &order)

	s.logger.Info("Order created",
		zap.String("session_id", session.ID),
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
		zap.String("currency", order.Currency),
	)
	return &order, nil
}

func assertSubmittable(session models.BookingSession) []models.CreateOrderItem {
	if session.LineupID == "" {
		panic("services: SubmitOrder called without a lineup")
	}
	if !session.TermsAccepted {
		panic("services: SubmitOrder called before terms were accepted")
	}
	var items []models.CreateOrderItem
	for _, sel := range models.PositiveSelections(session.Selections) {
		items = append(items, models.CreateOrderItem{TierID: sel.TierID, Quantity: sel.Quantity})
	}
	if len(items) == 0 {
		panic("services: SubmitOrder called without a positive ticket quantity")
	}
	return items
}

func (s *OrderService) cachedOrder(ctx context.Context, key string) *models.Order {
	if s.idem == nil {
		return nil
	}
	orderID, err := s.idem.GetIdempotency(ctx, key)
	if err != nil || orderID == "" {
		return nil
	}
	receipt, err := s.idem.GetReceipt(ctx, orderID)
	if err != nil || receipt == nil {
		return nil
	}
	return &receipt.Order
}

// classifyOrderError maps a gateway failure onto the order error taxonomy.
func classifyOrderError(err error) *OrderError {
	var httpErr *clients.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != clients.KindStatus {
		return &OrderError{Code: CodeNetworkFailure, Message: "order service unavailable", Err: err}
	}

	var body models.OrderErrorResponse
	if len(httpErr.RawBody) > 0 {
		_ = json.Unmarshal(httpErr.RawBody, &body)
	}

	code := strings.ToLower(body.Error)
	switch code {
	case CodeSoldOut, CodePromoInvalidated, CodePaymentDeclined:
	default:
		switch httpErr.StatusCode {
		case http.StatusConflict:
			code = CodeSoldOut
		case http.StatusPaymentRequired:
			code = CodePaymentDeclined
		default:
			return &OrderError{Code: CodeNetworkFailure, Message: "order service rejected the request", Err: err}
		}
	}

	return &OrderError{Code: code, Message: body.Message, Tiers: body.Tiers}
}

func (s *OrderService) publishConfirmed(ctx context.Context, session models.BookingSession, order *models.Order) {
	if s.publisher == nil {
		return
	}
	tickets := 0
	for _, item := range order.Items {
		tickets += item.Quantity
	}
	event := models.BookingConfirmedEvent{
		EventType: "booking_confirmed",
		OrderID:   order.ID,
		EventID:   order.EventID,
		LineupID:  order.LineupID,
		UserID:    clients.ForwardedHeader(ctx, "X-User-ID"),
		Tickets:   tickets,
		Total:     order.Total,
		Currency:  order.Currency,
		PromoCode: order.PromoCode,
		Timestamp: time.Now().UTC(),
	}
	// best-effort: the order exists regardless of the event
	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		s.logger.Error("Failed to publish booking_confirmed event",
			zap.String("session_id", session.ID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *OrderService) record(ctx context.Context, name string, dims map[string]string) {
	recordCount(ctx, s.metrics, s.logger, name, dims)
}

func recordCount(ctx context.Context, metrics MetricsRecorder, logger *zap.Logger, name string, dims map[string]string) {
	if metrics == nil {
		return
	}
	if dims == nil {
		dims = map[string]string{}
	}
	dims["Service"] = "booking-service"
	if err := metrics.RecordCount(ctx, name, dims); err != nil {
		logger.Debug("metric not recorded", zap.String("metric", name), zap.Error(err))
	}
}
