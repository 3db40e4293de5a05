package feed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	requestRepo "repairhub/database/repository/request"
	"repairhub/models"
)

var ErrStoreUnavailable = errors.New("request feed unavailable")

type FeedService interface {
	ListRequests(ctx context.Context, providerID string, filter Filter) ([]models.ServiceRequest, error)
}

// DefaultFeedService reads the feed straight from the request store. It never
// changes a request.
type DefaultFeedService struct {
	Store  requestRepo.RequestStore
	Logger *zap.Logger
}

func NewDefaultFeedService(store requestRepo.RequestStore, logger *zap.Logger) *DefaultFeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultFeedService{Store: store, Logger: logger}
}

func (s *DefaultFeedService) ListRequests(ctx context.Context, providerID string, filter Filter) ([]models.ServiceRequest, error) {
	requests, err := s.Store.QueryByStatus(ctx, models.AllStatuses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	out := Apply(requests, providerID, filter)
	s.Logger.Debug("request feed built",
		zap.String("providerId", providerID),
		zap.String("filter", string(filter)),
		zap.Int("count", len(out)))
	return out, nil
}
