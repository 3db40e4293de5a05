package claim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	requestRepo "repairhub/database/repository/request"
	"repairhub/models"
	"repairhub/services/lifecycle"
)

// ClaimService is the provider-facing API over the coordinator.
type ClaimService interface {
	AcceptRequest(ctx context.Context, requestID, providerID, providerName string) (*models.ServiceRequest, error)
	StartService(ctx context.Context, requestID, providerID string) (*models.ServiceRequest, error)
	CompleteService(ctx context.Context, requestID, providerID string, paymentAmount float64, paymentMethod string) (*models.ServiceRequest, error)
	GetRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error)
	CreateRequest(ctx context.Context, input models.NewRequestInput) (*models.ServiceRequest, error)
}

// DefaultClaimService is the production implementation.
type DefaultClaimService struct {
	Coordinator *Coordinator
}

func NewDefaultClaimService(coordinator *Coordinator) (*DefaultClaimService, error) {
	if coordinator == nil || coordinator.Store == nil {
		return nil, fmt.Errorf("claim service initialization error: coordinator or store is nil")
	}
	return &DefaultClaimService{Coordinator: coordinator}, nil
}

func (s *DefaultClaimService) AcceptRequest(ctx context.Context, requestID, providerID, providerName string) (*models.ServiceRequest, error) {
	actor := lifecycle.Actor{ID: providerID, Name: providerName}
	return s.Coordinator.AttemptTransition(ctx, requestID, lifecycle.EventAccept, actor, lifecycle.Payload{})
}

func (s *DefaultClaimService) StartService(ctx context.Context, requestID, providerID string) (*models.ServiceRequest, error) {
	actor := lifecycle.Actor{ID: providerID}
	return s.Coordinator.AttemptTransition(ctx, requestID, lifecycle.EventStart, actor, lifecycle.Payload{})
}

func (s *DefaultClaimService) CompleteService(ctx context.Context, requestID, providerID string, paymentAmount float64, paymentMethod string) (*models.ServiceRequest, error) {
	actor := lifecycle.Actor{ID: providerID}
	payload := lifecycle.Payload{Settlement: &models.Settlement{Amount: paymentAmount, Method: paymentMethod}}
	return s.Coordinator.AttemptTransition(ctx, requestID, lifecycle.EventComplete, actor, payload)
}

func (s *DefaultClaimService) GetRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	req, err := s.Coordinator.Store.Get(ctx, requestID)
	if errors.Is(err, requestRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return req, nil
}

// CreateRequest stands in for the external intake flow: it only ever writes a
// fresh pending request without claim or settlement attributes.
func (s *DefaultClaimService) CreateRequest(ctx context.Context, input models.NewRequestInput) (*models.ServiceRequest, error) {
	if strings.TrimSpace(input.ServiceType) == "" || strings.TrimSpace(input.Address) == "" {
		return nil, fmt.Errorf("%w: service type and address are required", ErrInvalidRequest)
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD: %w", ErrInvalidRequest, err)
	}

	req := models.ServiceRequest{
		ServiceType:         strings.TrimSpace(input.ServiceType),
		Address:             strings.TrimSpace(input.Address),
		Date:                input.Date,
		IsUrgent:            input.IsUrgent,
		SpecialInstructions: input.SpecialInstructions,
		Status:              models.StatusPending,
		CreatedAt:           s.Coordinator.now(),
	}
	id, err := s.Coordinator.Store.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	req.ID = id
	return &req, nil
}
