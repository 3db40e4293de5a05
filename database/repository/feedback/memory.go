package feedbackRepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"repairhub/models"
)

type MemoryFeedbackRepo struct {
	mu      sync.RWMutex
	records []models.ProviderFeedbackRecord
}

func NewMemoryFeedbackRepo() *MemoryFeedbackRepo {
	return &MemoryFeedbackRepo{}
}

func (r *MemoryFeedbackRepo) QueryByProvider(ctx context.Context, providerID string, limit int) ([]models.ProviderFeedbackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []models.ProviderFeedbackRecord
	for _, rec := range r.records {
		if rec.ProviderID == providerID {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryFeedbackRepo) Create(ctx context.Context, rec models.ProviderFeedbackRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return rec.ID, nil
}
