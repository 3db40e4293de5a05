package tasks

import (
	"testing"
	"time"

	"repairhub/models"
)

func TestTransitionTaskRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := models.LifecycleEvent{
		RequestID:  "req-1",
		ProviderID: "prov-a",
		Event:      "complete",
		From:       models.StatusInProgress,
		To:         models.StatusCompleted,
		At:         at,
	}

	task, opts, err := NewTransitionTask(ev)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeRequestTransitioned {
		t.Fatalf("unexpected task type %q", task.Type())
	}
	if len(opts) == 0 {
		t.Fatalf("expected enqueue options")
	}

	got, err := ParseTransitionTask(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.RequestID != ev.RequestID || got.To != ev.To || !got.At.Equal(at) {
		t.Fatalf("payload mismatch: %+v", got)
	}
}
