package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"
	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"go.uber.org/zap"
)

var ErrEventNotFound = errors.New("event not found")

// EventCatalog reads event records.
type EventCatalog interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

type CatalogService struct {
	gateway clients.Gateway
	logger  *zap.Logger
}

func NewCatalogService(gateway clients.Gateway, logger *zap.Logger) *CatalogService {
	return &CatalogService{gateway: gateway, logger: logger}
}

// GetEvent fetches one event with its lineups and tiers.
func (s *CatalogService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	if eventID == "" {
		return nil, ErrEventNotFound
	}

	var event models.Event
	err := clients.RequestJSON(ctx, s.gateway, http.MethodGet, "/events/"+url.PathEscape(eventID), nil, nil, &event)
	if err != nil {
		var httpErr *clients.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, ErrEventNotFound
		}
		s.logger.Error("Failed to fetch event", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}
	if event.ID == "" {
		return nil, ErrEventNotFound
	}
	return &event, nil
}
