// Package lifecycle holds the request state machine. It performs no I/O.
package lifecycle

import (
	"math"
	"strings"
	"time"

	"repairhub/models"
)

// Event is a provider action that advances a request.
type Event string

const (
	EventAccept   Event = "accept"
	EventStart    Event = "start"
	EventComplete Event = "complete"
)

// Actor is the provider attempting a transition.
type Actor struct {
	ID   string
	Name string
}

// Payload carries event-specific input. Settlement is required for complete and
// must be absent otherwise.
type Payload struct {
	Settlement *models.Settlement
}

type rule struct {
	from          models.RequestStatus
	to            models.RequestStatus
	claimantOnly  bool
	needsSettling bool
}

var rules = map[Event]rule{
	EventAccept:   {from: models.StatusPending, to: models.StatusAccepted},
	EventStart:    {from: models.StatusAccepted, to: models.StatusInProgress, claimantOnly: true},
	EventComplete: {from: models.StatusInProgress, to: models.StatusCompleted, claimantOnly: true, needsSettling: true},
}

// Target returns the status an event leads to.
func Target(ev Event) (models.RequestStatus, bool) {
	r, ok := rules[ev]
	return r.to, ok
}

// Apply computes the fields ev writes on req, or a *TransitionError.
// now is clamped so no stage timestamp precedes the previous one.
func Apply(req models.ServiceRequest, ev Event, actor Actor, payload Payload, now time.Time) (models.RequestMutation, error) {
	r, ok := rules[ev]
	if !ok {
		return models.RequestMutation{}, invalid(ev, req.Status, "unknown event")
	}
	if !req.Status.Valid() {
		return models.RequestMutation{}, invalid(ev, req.Status, "record has an unknown status")
	}
	if req.Status != r.from {
		return models.RequestMutation{}, invalid(ev, req.Status, "request must be "+string(r.from))
	}
	actorID := strings.TrimSpace(actor.ID)
	if actorID == "" {
		return models.RequestMutation{}, invalid(ev, req.Status, "missing provider id")
	}

	if r.claimantOnly {
		if !req.IsClaimed() {
			return models.RequestMutation{}, invalid(ev, req.Status, "request has no claimant")
		}
		if req.ProviderID != actorID {
			return models.RequestMutation{}, invalid(ev, req.Status, "only the claiming provider may "+string(ev)+" this request")
		}
	} else if req.IsClaimed() {
		return models.RequestMutation{}, invalid(ev, req.Status, "pending request already carries a claimant")
	}

	if r.needsSettling {
		if payload.Settlement == nil {
			return models.RequestMutation{}, invalid(ev, req.Status, "settlement is required")
		}
		if err := validateSettlement(*payload.Settlement); err != "" {
			return models.RequestMutation{}, invalid(ev, req.Status, err)
		}
	} else if payload.Settlement != nil {
		return models.RequestMutation{}, invalid(ev, req.Status, "settlement is only accepted on complete")
	}

	mut := models.RequestMutation{Status: r.to}
	switch ev {
	case EventAccept:
		at := now
		name := strings.TrimSpace(actor.Name)
		mut.ProviderID = &actorID
		mut.ProviderName = &name
		mut.AcceptedAt = &at
	case EventStart:
		at := notBefore(now, req.AcceptedAt)
		mut.StartedAt = &at
	case EventComplete:
		at := notBefore(now, req.StartedAt)
		mut.CompletedAt = &at
		s := *payload.Settlement
		s.Method = strings.TrimSpace(s.Method)
		s.Timestamp = at
		mut.Settlement = &s
	}
	return mut, nil
}

func validateSettlement(s models.Settlement) string {
	if math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
		return "payment amount must be a finite number"
	}
	if s.Amount < 0 {
		return "payment amount must not be negative"
	}
	if strings.TrimSpace(s.Method) == "" {
		return "payment method is required"
	}
	return ""
}

func notBefore(now time.Time, prev *time.Time) time.Time {
	if prev != nil && now.Before(*prev) {
		return *prev
	}
	return now
}

func invalid(ev Event, from models.RequestStatus, reason string) error {
	return &TransitionError{Event: ev, From: string(from), Reason: reason}
}
