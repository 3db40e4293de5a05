package requestRepo

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"repairhub/models"
)

func TestConditionalFilterUnclaimedMatchesMissingField(t *testing.T) {
	got := conditionalFilter("r1", models.RequestSnapshot{Status: models.StatusPending})
	want := bson.M{
		"id":                "r1",
		"status":            "pending",
		"preferredProvider": bson.M{"$in": bson.A{nil, ""}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestConditionalFilterClaimed(t *testing.T) {
	got := conditionalFilter("r1", models.RequestSnapshot{Status: models.StatusAccepted, ProviderID: "p1"})
	if got["preferredProvider"] != "p1" || got["status"] != "accepted" {
		t.Fatalf("unexpected filter %v", got)
	}
}

func TestMutationSetOnlyWritesProvidedFields(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	set := mutationSet(models.RequestMutation{Status: models.StatusInProgress, StartedAt: &now})
	if len(set) != 2 || set["status"] != "in-progress" || set["startedAt"] != now {
		t.Fatalf("unexpected $set %v", set)
	}

	set = mutationSet(models.RequestMutation{
		Status:      models.StatusCompleted,
		CompletedAt: &now,
		Settlement:  &models.Settlement{Amount: 150, Method: "card", Timestamp: now},
	})
	for _, key := range []string{"status", "completedAt", "paymentAmount", "paymentMethod", "paymentTimestamp"} {
		if _, ok := set[key]; !ok {
			t.Fatalf("missing %s in %v", key, set)
		}
	}
	if _, ok := set["preferredProvider"]; ok {
		t.Fatalf("claimant must not be rewritten on complete: %v", set)
	}
}

func TestMemoryConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRequestRepo()
	id, err := repo.Create(ctx, models.ServiceRequest{Status: models.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	provider := "p1"
	now := time.Now()
	mut := models.RequestMutation{Status: models.StatusAccepted, ProviderID: &provider, AcceptedAt: &now}

	updated, err := repo.ConditionalUpdate(ctx, id, models.RequestSnapshot{Status: models.StatusPending}, mut)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if updated.Status != models.StatusAccepted || updated.ProviderID != "p1" {
		t.Fatalf("unexpected record %+v", updated)
	}

	_, err = repo.ConditionalUpdate(ctx, id, models.RequestSnapshot{Status: models.StatusPending}, mut)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}

	_, err = repo.ConditionalUpdate(ctx, "missing", models.RequestSnapshot{Status: models.StatusPending}, mut)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRequestRepo()
	amount := 20.0
	id, _ := repo.Create(ctx, models.ServiceRequest{Status: models.StatusCompleted, ProviderID: "p1", PaymentAmount: &amount})

	got, _ := repo.Get(ctx, id)
	*got.PaymentAmount = 999

	again, _ := repo.Get(ctx, id)
	if *again.PaymentAmount != 20 {
		t.Fatalf("stored record was aliased, amount=%v", *again.PaymentAmount)
	}
}

func TestMemoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRequestRepo()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	early, late := base, base.Add(time.Hour)

	repo.Create(ctx, models.ServiceRequest{ID: "a", Status: models.StatusPending, CreatedAt: base})
	repo.Create(ctx, models.ServiceRequest{ID: "b", Status: models.StatusPending, CreatedAt: base.Add(time.Minute)})
	repo.Create(ctx, models.ServiceRequest{ID: "c", Status: models.StatusCompleted, ProviderID: "p1", CompletedAt: &early})
	repo.Create(ctx, models.ServiceRequest{ID: "d", Status: models.StatusCompleted, ProviderID: "p1", CompletedAt: &late})
	repo.Create(ctx, models.ServiceRequest{ID: "e", Status: models.StatusCompleted, ProviderID: "p2", CompletedAt: &late})

	pending, err := repo.QueryByStatus(ctx, []models.RequestStatus{models.StatusPending})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "b" {
		t.Fatalf("expected newest pending first, got %+v", pending)
	}

	done, err := repo.QueryCompletedByProvider(ctx, "p1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(done) != 2 || done[0].ID != "d" || done[1].ID != "c" {
		t.Fatalf("expected p1 completions newest first, got %+v", done)
	}
}

func TestDecodeRequestsSkipsMalformedDocuments(t *testing.T) {
	at := time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)
	docs := []interface{}{
		bson.M{"id": "r1", "status": "completed", "preferredProvider": "A", "paymentAmount": 150.0, "completedAt": at},
		// written by an older client with the amount as text
		bson.M{"id": "r2", "status": "completed", "preferredProvider": "A", "paymentAmount": "150", "completedAt": at},
		bson.M{"id": "r3", "status": "completed", "preferredProvider": "A", "paymentAmount": 40.0, "completedAt": at},
	}
	cursor, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	core, logs := observer.New(zapcore.WarnLevel)

	out, err := decodeRequests(context.Background(), cursor, zap.New(core))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].ID != "r1" || out[1].ID != "r3" {
		t.Fatalf("expected r1 and r3, got %+v", out)
	}

	skipped := logs.FilterMessage("skipping undecodable request").All()
	if len(skipped) != 1 || skipped[0].ContextMap()["requestId"] != "r2" {
		t.Fatalf("expected one skip for r2, got %v", skipped)
	}
}
