package feedbackRepo

import (
	"context"

	"repairhub/models"
)

const CollectionName = "feedback"

// FeedbackSource reads provider feedback written by the external feedback intake.
type FeedbackSource interface {
	// QueryByProvider returns the provider's feedback. When limit > 0 only the
	// limit most recent records are returned, newest first.
	QueryByProvider(ctx context.Context, providerID string, limit int) ([]models.ProviderFeedbackRecord, error)
	// Create inserts a feedback record and returns its id.
	Create(ctx context.Context, rec models.ProviderFeedbackRecord) (string, error)
}
