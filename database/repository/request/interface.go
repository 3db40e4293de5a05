// File: database/repository/request/interface.go
package requestRepo

import (
	"context"
	"errors"

	"repairhub/models"
)

const (
	// CollectionName is shared by every backend so external read views see one schema.
	CollectionName = "bookings"
)

var (
	// ErrNotFound is returned when no request has the given id.
	ErrNotFound = errors.New("request not found")
	// ErrPreconditionFailed is returned when the stored status or claimant no longer
	// matches the expected snapshot.
	ErrPreconditionFailed = errors.New("request precondition failed")
)

// RequestStore is the durable storage the claim coordinator writes through.
type RequestStore interface {
	// Get returns the request or ErrNotFound.
	Get(ctx context.Context, id string) (*models.ServiceRequest, error)
	// QueryByStatus returns every request whose status is in statuses.
	QueryByStatus(ctx context.Context, statuses []models.RequestStatus) ([]models.ServiceRequest, error)
	// QueryCompletedByProvider returns the provider's completed requests, most recently completed first.
	QueryCompletedByProvider(ctx context.Context, providerID string) ([]models.ServiceRequest, error)
	// ConditionalUpdate atomically applies mutation only if the stored status and claimant
	// equal expected, returning the updated record. Fails with ErrPreconditionFailed or ErrNotFound.
	ConditionalUpdate(ctx context.Context, id string, expected models.RequestSnapshot, mutation models.RequestMutation) (*models.ServiceRequest, error)
	// Create inserts a new request and returns its id.
	Create(ctx context.Context, req models.ServiceRequest) (string, error)
}

func statusStrings(statuses []models.RequestStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
