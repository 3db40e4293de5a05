package lifecycle

import (
	"errors"
	"math"
	"testing"
	"time"

	"repairhub/models"
)

var t0 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func pendingRequest() models.ServiceRequest {
	return models.ServiceRequest{ID: "req-1", ServiceType: "plumbing", Status: models.StatusPending, CreatedAt: t0.Add(-time.Hour)}
}

func settle(amount float64, method string) Payload {
	return Payload{Settlement: &models.Settlement{Amount: amount, Method: method}}
}

func TestApplyWalksLifecycleInOrder(t *testing.T) {
	req := pendingRequest()
	a := Actor{ID: "prov-a", Name: "Alice"}

	steps := []struct {
		ev      Event
		payload Payload
		want    models.RequestStatus
	}{
		{EventAccept, Payload{}, models.StatusAccepted},
		{EventStart, Payload{}, models.StatusInProgress},
		{EventComplete, settle(150, "card"), models.StatusCompleted},
	}
	for i, step := range steps {
		mut, err := Apply(req, step.ev, a, step.payload, t0.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("step %s: unexpected error %v", step.ev, err)
		}
		if mut.Status != step.want {
			t.Fatalf("step %s: expected %s, got %s", step.ev, step.want, mut.Status)
		}
		req = mut.ApplyTo(req)
	}

	if req.ProviderID != "prov-a" || req.ProviderName != "Alice" {
		t.Fatalf("unexpected claimant %q/%q", req.ProviderID, req.ProviderName)
	}
	if req.PaymentAmount == nil || *req.PaymentAmount != 150 || req.PaymentMethod != "card" {
		t.Fatalf("settlement not recorded: %+v", req)
	}
	if !req.PaymentTimestamp.Equal(*req.CompletedAt) {
		t.Fatalf("payment timestamp %v should equal completion %v", req.PaymentTimestamp, req.CompletedAt)
	}
	if req.AcceptedAt.After(*req.StartedAt) || req.StartedAt.After(*req.CompletedAt) {
		t.Fatalf("timestamps out of order: %v %v %v", req.AcceptedAt, req.StartedAt, req.CompletedAt)
	}
}

func TestApplyRejectsInvalidTransitions(t *testing.T) {
	accepted := pendingRequest()
	mut, _ := Apply(accepted, EventAccept, Actor{ID: "prov-a"}, Payload{}, t0)
	accepted = mut.ApplyTo(accepted)

	inProgress := accepted
	mut, _ = Apply(inProgress, EventStart, Actor{ID: "prov-a"}, Payload{}, t0)
	inProgress = mut.ApplyTo(inProgress)

	claimedPending := pendingRequest()
	claimedPending.ProviderID = "prov-x"

	tests := []struct {
		name    string
		req     models.ServiceRequest
		ev      Event
		actor   string
		payload Payload
	}{
		{"skip to start", pendingRequest(), EventStart, "prov-a", Payload{}},
		{"skip to complete", accepted, EventComplete, "prov-a", settle(10, "cash")},
		{"accept twice", accepted, EventAccept, "prov-a", Payload{}},
		{"start by other", accepted, EventStart, "prov-b", Payload{}},
		{"complete by other", inProgress, EventComplete, "prov-b", settle(10, "cash")},
		{"complete without settlement", inProgress, EventComplete, "prov-a", Payload{}},
		{"negative amount", inProgress, EventComplete, "prov-a", settle(-1, "cash")},
		{"nan amount", inProgress, EventComplete, "prov-a", settle(math.NaN(), "cash")},
		{"blank method", inProgress, EventComplete, "prov-a", settle(10, "  ")},
		{"settlement on accept", pendingRequest(), EventAccept, "prov-a", settle(10, "cash")},
		{"settlement on start", accepted, EventStart, "prov-a", settle(10, "cash")},
		{"missing actor", pendingRequest(), EventAccept, " ", Payload{}},
		{"unknown event", pendingRequest(), Event("cancel"), "prov-a", Payload{}},
		{"pending with claimant", claimedPending, EventAccept, "prov-a", Payload{}},
		{"unknown status", models.ServiceRequest{Status: "archived"}, EventAccept, "prov-a", Payload{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(tc.req, tc.ev, Actor{ID: tc.actor}, tc.payload, t0)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			var te *TransitionError
			if !errors.As(err, &te) || te.Reason == "" {
				t.Fatalf("expected a TransitionError with a reason, got %#v", err)
			}
		})
	}
}

func TestApplyClampsTimestampsToPreviousStage(t *testing.T) {
	req := pendingRequest()
	mut, err := Apply(req, EventAccept, Actor{ID: "prov-a"}, Payload{}, t0)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	req = mut.ApplyTo(req)

	// clock on the starting host runs behind the accepting host
	mut, err = Apply(req, EventStart, Actor{ID: "prov-a"}, Payload{}, t0.Add(-5*time.Second))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !mut.StartedAt.Equal(t0) {
		t.Fatalf("expected startedAt clamped to %v, got %v", t0, mut.StartedAt)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	req := pendingRequest()
	if _, err := Apply(req, EventAccept, Actor{ID: "prov-a"}, Payload{}, t0); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if req.Status != models.StatusPending || req.ProviderID != "" || req.AcceptedAt != nil {
		t.Fatalf("input record was modified: %+v", req)
	}
}
