// File: models/request.go
package models

import "time"

// RequestStatus is the lifecycle stage of a service request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAccepted   RequestStatus = "accepted"
	StatusInProgress RequestStatus = "in-progress"
	StatusCompleted  RequestStatus = "completed"
)

// AllStatuses lists every valid status in lifecycle order.
var AllStatuses = []RequestStatus{StatusPending, StatusAccepted, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the four lifecycle stages.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ServiceRequest is a repair request as persisted in the "bookings" collection.
type ServiceRequest struct {
	ID                  string        `bson:"id" json:"id" firestore:"-"`                                                                 // Opaque unique identifier
	ServiceType         string        `bson:"serviceType" json:"serviceType" firestore:"serviceType"`                                     // e.g. "plumbing", "electrical"
	Address             string        `bson:"address" json:"address" firestore:"address"`                                                 // Street / location descriptor
	Date                string        `bson:"date" json:"date" firestore:"date"`                                                          // Requested date "YYYY-MM-DD"
	IsUrgent            bool          `bson:"isUrgent" json:"isUrgent" firestore:"isUrgent"`                                              // Urgency flag
	SpecialInstructions string        `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty" firestore:"specialInstructions,omitempty"`
	Status              RequestStatus `bson:"status" json:"status" firestore:"status"`
	CreatedAt           time.Time     `bson:"createdAt" json:"createdAt" firestore:"createdAt"`

	// Claim attributes, set on accept and never changed afterwards.
	ProviderID   string     `bson:"preferredProvider,omitempty" json:"preferredProvider,omitempty" firestore:"preferredProvider,omitempty"`
	ProviderName string     `bson:"providerName,omitempty" json:"providerName,omitempty" firestore:"providerName,omitempty"`
	AcceptedAt   *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty" firestore:"acceptedAt,omitempty"`
	StartedAt    *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty" firestore:"startedAt,omitempty"`
	CompletedAt  *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty" firestore:"completedAt,omitempty"`

	// Settlement attributes, present only once completed.
	PaymentAmount    *float64   `bson:"paymentAmount,omitempty" json:"paymentAmount,omitempty" firestore:"paymentAmount,omitempty"`
	PaymentMethod    string     `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty" firestore:"paymentMethod,omitempty"` // "cash" or "card"
	PaymentTimestamp *time.Time `bson:"paymentTimestamp,omitempty" json:"paymentTimestamp,omitempty" firestore:"paymentTimestamp,omitempty"`
}

// IsClaimed reports whether a provider has claimed the request.
func (r *ServiceRequest) IsClaimed() bool {
	return r.ProviderID != ""
}

// Snapshot captures the fields a conditional write is guarded on.
func (r *ServiceRequest) Snapshot() RequestSnapshot {
	return RequestSnapshot{Status: r.Status, ProviderID: r.ProviderID}
}

// RequestSnapshot is the expected prior state of a conditional update.
type RequestSnapshot struct {
	Status     RequestStatus
	ProviderID string
}

// Settlement is the payment information attached on completion.
type Settlement struct {
	Amount    float64   `json:"paymentAmount"`
	Method    string    `json:"paymentMethod"`
	Timestamp time.Time `json:"paymentTimestamp"`
}

// RequestMutation is the set of fields one transition writes. Nil fields are left untouched.
type RequestMutation struct {
	Status       RequestStatus
	ProviderID   *string
	ProviderName *string
	AcceptedAt   *time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Settlement   *Settlement
}

// ApplyTo returns a copy of r with the mutation applied.
func (m RequestMutation) ApplyTo(r ServiceRequest) ServiceRequest {
	r.Status = m.Status
	if m.ProviderID != nil {
		r.ProviderID = *m.ProviderID
	}
	if m.ProviderName != nil {
		r.ProviderName = *m.ProviderName
	}
	if m.AcceptedAt != nil {
		t := *m.AcceptedAt
		r.AcceptedAt = &t
	}
	if m.StartedAt != nil {
		t := *m.StartedAt
		r.StartedAt = &t
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		r.CompletedAt = &t
	}
	if m.Settlement != nil {
		amount := m.Settlement.Amount
		ts := m.Settlement.Timestamp
		r.PaymentAmount = &amount
		r.PaymentMethod = m.Settlement.Method
		r.PaymentTimestamp = &ts
	}
	return r
}

// NewRequestInput is the intake payload for creating a pending request.
type NewRequestInput struct {
	ServiceType         string `json:"serviceType" binding:"required"`
	Address             string `json:"address" binding:"required"`
	Date                string `json:"date" binding:"required"`
	IsUrgent            bool   `json:"isUrgent"`
	SpecialInstructions string `json:"specialInstructions"`
}

// CompleteServiceInput is the body of a completion call.
type CompleteServiceInput struct {
	PaymentAmount *float64 `json:"paymentAmount" binding:"required"`
	PaymentMethod string   `json:"paymentMethod" binding:"required"`
}
