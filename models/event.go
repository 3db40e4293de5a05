package models

import "time"

// LifecycleEvent is emitted after a transition has been committed.
type LifecycleEvent struct {
	RequestID  string        `json:"requestId"`
	ProviderID string        `json:"providerId"`
	Event      string        `json:"event"` // "accept", "start" or "complete"
	From       RequestStatus `json:"from"`
	To         RequestStatus `json:"to"`
	At         time.Time     `json:"at"`
}
