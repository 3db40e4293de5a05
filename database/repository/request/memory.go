package requestRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"repairhub/models"
)

// MemoryRequestRepo is an in-process RequestStore for local runs and tests.
// The mutex stands in for the document-level atomicity a real store provides.
type MemoryRequestRepo struct {
	mu       sync.Mutex
	requests map[string]models.ServiceRequest
}

func NewMemoryRequestRepo() *MemoryRequestRepo {
	return &MemoryRequestRepo{requests: make(map[string]models.ServiceRequest)}
}

func (r *MemoryRequestRepo) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRequest(req)
	return &out, nil
}

func (r *MemoryRequestRepo) QueryByStatus(ctx context.Context, statuses []models.RequestStatus) ([]models.ServiceRequest, error) {
	want := make(map[models.RequestStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	out, err := r.collect(ctx, func(req models.ServiceRequest) bool { return want[req.Status] })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRequestRepo) QueryCompletedByProvider(ctx context.Context, providerID string) ([]models.ServiceRequest, error) {
	out, err := r.collect(ctx, func(req models.ServiceRequest) bool {
		return req.Status == models.StatusCompleted && req.ProviderID == providerID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return timeOrZero(out[i].CompletedAt).After(timeOrZero(out[j].CompletedAt)) })
	return out, nil
}

func (r *MemoryRequestRepo) collect(ctx context.Context, keep func(models.ServiceRequest) bool) ([]models.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ServiceRequest
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, cloneRequest(req))
		}
	}
	// map iteration is random; fix a base order before the caller's sort
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRequestRepo) ConditionalUpdate(ctx context.Context, id string, expected models.RequestSnapshot, mutation models.RequestMutation) (*models.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Snapshot() != expected {
		return nil, ErrPreconditionFailed
	}
	updated := mutation.ApplyTo(cloneRequest(current))
	r.requests[id] = updated
	out := cloneRequest(updated)
	return &out, nil
}

func (r *MemoryRequestRepo) Create(ctx context.Context, req models.ServiceRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = cloneRequest(req)
	return req.ID, nil
}

func cloneRequest(req models.ServiceRequest) models.ServiceRequest {
	req.AcceptedAt = cloneTime(req.AcceptedAt)
	req.StartedAt = cloneTime(req.StartedAt)
	req.CompletedAt = cloneTime(req.CompletedAt)
	req.PaymentTimestamp = cloneTime(req.PaymentTimestamp)
	if req.PaymentAmount != nil {
		amount := *req.PaymentAmount
		req.PaymentAmount = &amount
	}
	return req
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
