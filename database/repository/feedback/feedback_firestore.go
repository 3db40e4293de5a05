package feedbackRepo

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"repairhub/models"
)

type FirestoreFeedbackRepo struct {
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreFeedbackRepo(client *firestore.Client, logger *zap.Logger) *FirestoreFeedbackRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreFeedbackRepo{client: client, logger: logger}
}

// feedbackDoc shadows the yes/no answers with untyped fields, since DataTo
// cannot decode the form's "Yes"/"No" strings into a boolean.
type feedbackDoc struct {
	models.ProviderFeedbackRecord
	ProviderOnTime any `firestore:"providerOnTime"`
	Recommended    any `firestore:"recommendation"`
	IssueResolved  any `firestore:"issueResolution"`
}

func (d feedbackDoc) record(id string) (models.ProviderFeedbackRecord, error) {
	rec := d.ProviderFeedbackRecord
	rec.ID = id
	var err error
	if rec.ProviderOnTime, err = models.ParseFlag(d.ProviderOnTime); err != nil {
		return rec, fmt.Errorf("providerOnTime: %w", err)
	}
	if rec.Recommended, err = models.ParseFlag(d.Recommended); err != nil {
		return rec, fmt.Errorf("recommendation: %w", err)
	}
	if rec.IssueResolved, err = models.ParseFlag(d.IssueResolved); err != nil {
		return rec, fmt.Errorf("issueResolution: %w", err)
	}
	return rec, nil
}

func (r *FirestoreFeedbackRepo) QueryByProvider(ctx context.Context, providerID string, limit int) ([]models.ProviderFeedbackRecord, error) {
	q := r.client.Collection(CollectionName).
		Where("providerId", "==", providerID).
		OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback for provider %s: %w", providerID, err)
	}
	records := make([]models.ProviderFeedbackRecord, 0, len(snaps))
	for _, snap := range snaps {
		var doc feedbackDoc
		if err := snap.DataTo(&doc); err != nil {
			r.logger.Warn("skipping undecodable feedback", zap.String("feedbackId", snap.Ref.ID), zap.Error(err))
			continue
		}
		rec, err := doc.record(snap.Ref.ID)
		if err != nil {
			r.logger.Warn("skipping undecodable feedback", zap.String("feedbackId", snap.Ref.ID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *FirestoreFeedbackRepo) Create(ctx context.Context, rec models.ProviderFeedbackRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if _, err := r.client.Collection(CollectionName).Doc(rec.ID).Create(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to insert feedback: %w", err)
	}
	return rec.ID, nil
}
