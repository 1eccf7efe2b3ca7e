package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"
	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"go.uber.org/zap"
)

const promoValidityPath = "/promo-codes/validity-check"

// PromoValidator validates a promo code against an event.
type PromoValidator interface {
	ValidatePromo(ctx context.Context, code, eventID string) (*models.DiscountDescriptor, error)
}

// PromoService asks the remote promo service, which is authoritative.
type PromoService struct {
	gateway clients.Gateway
	metrics MetricsRecorder
	logger  *zap.Logger
}

func NewPromoService(gateway clients.Gateway, metrics MetricsRecorder, logger *zap.Logger) *PromoService {
	return &PromoService{gateway: gateway, metrics: metrics, logger: logger}
}

// ValidatePromo returns the discount the code grants for eventID.
func (s *PromoService) ValidatePromo(ctx context.Context, code, eventID string) (*models.DiscountDescriptor, error) {
	discount, err := s.validate(ctx, code, eventID)
	if err != nil {
		recordCount(ctx, s.metrics, s.logger, MetricPromoRejected, map[string]string{"Reason": ErrorCode(err)})
		return nil, err
	}
	recordCount(ctx, s.metrics, s.logger, MetricPromoValidated, map[string]string{"Type": string(discount.Type)})
	return discount, nil
}

func (s *PromoService) validate(ctx context.Context, code, eventID string) (*models.DiscountDescriptor, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ValidationError{Code: CodeInvalidCode, Message: "promo code is empty"}
	}
	if eventID == "" {
		return nil, &ValidationError{Code: CodeEventMismatch, Message: "no event selected"}
	}

	raw, err := s.gateway.Request(ctx, http.MethodPost, promoValidityPath, models.ValidatePromoRequest{
		Code:    code,
		EventID: eventID,
	}, nil)
	if err != nil {
		return nil, s.classify(code, err)
	}

	var resp models.ValidatePromoResponse
	if err := clients.DecodeJSON(raw, &resp); err != nil {
		return nil, &ValidationError{Code: CodeNetworkFailure, Message: "unreadable promo response", Err: err}
	}

	if !resp.Valid {
		if strings.EqualFold(resp.Reason, CodeExpired) {
			return nil, &ValidationError{Code: CodeExpired, Message: resp.Message}
		}
		if strings.EqualFold(resp.Reason, CodeEventMismatch) {
			return nil, &ValidationError{Code: CodeEventMismatch, Message: resp.Message}
		}
		return nil, &ValidationError{Code: CodeInvalidCode, Message: resp.Message}
	}

	scope := resp.EventID
	if scope == "" {
		scope = eventID
	}
	if scope != eventID {
		s.logger.Warn("Promo scoped to another event",
			zap.String("code", code),
			zap.String("event_id", eventID),
			zap.String("scope", scope),
		)
		return nil, &ValidationError{Code: CodeEventMismatch, Message: "promo code does not apply to this event"}
	}

	switch resp.Type {
	case models.DiscountTypePercentage, models.DiscountTypeFixed:
	default:
		return nil, &ValidationError{Code: CodeInvalidCode, Message: "unsupported discount type " + string(resp.Type)}
	}

	s.logger.Info("Promo validated",
		zap.String("code", code),
		zap.String("event_id", eventID),
		zap.String("type", string(resp.Type)),
		zap.Float64("value", resp.Value),
	)

	return &models.DiscountDescriptor{
		Type:    resp.Type,
		Value:   resp.Value,
		EventID: scope,
	}, nil
}

func (s *PromoService) classify(code string, err error) error {
	var httpErr *clients.HTTPError
	if errors.As(err, &httpErr) && httpErr.Kind == clients.KindStatus {
		reason := ""
		if httpErr.Body != nil {
			reason, _ = httpErr.Body["reason"].(string)
			if reason == "" {
				reason, _ = httpErr.Body["error"].(string)
			}
		}
		switch {
		case strings.EqualFold(reason, CodeExpired):
			return &ValidationError{Code: CodeExpired, Message: httpErr.Message()}
		case strings.EqualFold(reason, CodeEventMismatch):
			return &ValidationError{Code: CodeEventMismatch, Message: httpErr.Message()}
		case httpErr.StatusCode == http.StatusNotFound, httpErr.StatusCode == http.StatusUnprocessableEntity,
			strings.EqualFold(reason, CodeInvalidCode):
			return &ValidationError{Code: CodeInvalidCode, Message: httpErr.Message()}
		}
	}

	s.logger.Error("Promo validation round-trip failed", zap.String("code", code), zap.Error(err))
	return &ValidationError{Code: CodeNetworkFailure, Message: "promo service unavailable", Err: err}
}
