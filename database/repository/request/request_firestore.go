package requestRepo

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"repairhub/models"
)

// FirestoreRequestRepo implements RequestStore on a Firestore collection.
// Conditional updates run inside a transaction, which Firestore aborts if the
// document changes between the read and the commit.
type FirestoreRequestRepo struct {
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreRequestRepo(client *firestore.Client, logger *zap.Logger) *FirestoreRequestRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreRequestRepo{client: client, logger: logger}
}

func (r *FirestoreRequestRepo) coll() *firestore.CollectionRef {
	return r.client.Collection(CollectionName)
}

func (r *FirestoreRequestRepo) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	snap, err := r.coll().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request %s: %w", id, err)
	}
	return decodeRequest(snap)
}

func (r *FirestoreRequestRepo) QueryByStatus(ctx context.Context, statuses []models.RequestStatus) ([]models.ServiceRequest, error) {
	q := r.coll().Where("status", "in", statusStrings(statuses)).OrderBy("createdAt", firestore.Desc)
	return r.query(ctx, q)
}

func (r *FirestoreRequestRepo) QueryCompletedByProvider(ctx context.Context, providerID string) ([]models.ServiceRequest, error) {
	q := r.coll().
		Where("preferredProvider", "==", providerID).
		Where("status", "==", string(models.StatusCompleted)).
		OrderBy("completedAt", firestore.Desc)
	return r.query(ctx, q)
}

func (r *FirestoreRequestRepo) query(ctx context.Context, q firestore.Query) ([]models.ServiceRequest, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	out := make([]models.ServiceRequest, 0, len(snaps))
	for _, snap := range snaps {
		req, err := decodeRequest(snap)
		if err != nil {
			r.logger.Warn("skipping undecodable request", zap.String("requestId", snap.Ref.ID), zap.Error(err))
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *FirestoreRequestRepo) ConditionalUpdate(ctx context.Context, id string, expected models.RequestSnapshot, mutation models.RequestMutation) (*models.ServiceRequest, error) {
	ref := r.coll().Doc(id)
	var updated models.ServiceRequest

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := decodeRequest(snap)
		if err != nil {
			return err
		}
		if current.Snapshot() != expected {
			return ErrPreconditionFailed
		}
		if err := tx.Update(ref, firestoreUpdates(mutation)); err != nil {
			return err
		}
		updated = mutation.ApplyTo(*current)
		return nil
	})
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPreconditionFailed) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("conditional update of request %s failed: %w", id, err)
	}
	return &updated, nil
}

func (r *FirestoreRequestRepo) Create(ctx context.Context, req models.ServiceRequest) (string, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if _, err := r.coll().Doc(req.ID).Create(ctx, req); err != nil {
		return "", fmt.Errorf("failed to insert request: %w", err)
	}
	return req.ID, nil
}

func decodeRequest(snap *firestore.DocumentSnapshot) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request %s: %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}

func firestoreUpdates(m models.RequestMutation) []firestore.Update {
	updates := []firestore.Update{{Path: "status", Value: string(m.Status)}}
	if m.ProviderID != nil {
		updates = append(updates, firestore.Update{Path: "preferredProvider", Value: *m.ProviderID})
	}
	if m.ProviderName != nil {
		updates = append(updates, firestore.Update{Path: "providerName", Value: *m.ProviderName})
	}
	if m.AcceptedAt != nil {
		updates = append(updates, firestore.Update{Path: "acceptedAt", Value: *m.AcceptedAt})
	}
	if m.StartedAt != nil {
		updates = append(updates, firestore.Update{Path: "startedAt", Value: *m.StartedAt})
	}
	if m.CompletedAt != nil {
		updates = append(updates, firestore.Update{Path: "completedAt", Value: *m.CompletedAt})
	}
	if m.Settlement != nil {
		updates = append(updates,
			firestore.Update{Path: "paymentAmount", Value: m.Settlement.Amount},
			firestore.Update{Path: "paymentMethod", Value: m.Settlement.Method},
			firestore.Update{Path: "paymentTimestamp", Value: m.Settlement.Timestamp},
		)
	}
	return updates
}
