package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"repairhub/models"
)

const TypeRequestTransitioned = "request:transitioned"

// NewTransitionTask wraps a committed lifecycle event as an asynq task.
func NewTransitionTask(ev models.LifecycleEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRequestTransitioned, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Queue("default")}

	return task, opts, nil
}

// ParseTransitionTask decodes the payload built by NewTransitionTask.
func ParseTransitionTask(task *asynq.Task) (models.LifecycleEvent, error) {
	var ev models.LifecycleEvent
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return ev, fmt.Errorf("invalid %s payload: %w", TypeRequestTransitioned, err)
	}
	return ev, nil
}

// EventPublisher hands committed lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.LifecycleEvent) error
}

// AsynqPublisher enqueues lifecycle events on the asynq queue.
type AsynqPublisher struct {
	Client *asynq.Client
}

func NewAsynqPublisher(client *asynq.Client) *AsynqPublisher {
	return &AsynqPublisher{Client: client}
}

func (p *AsynqPublisher) Publish(ctx context.Context, ev models.LifecycleEvent) error {
	task, opts, err := NewTransitionTask(ev)
	if err != nil {
		return err
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue %s for request %s: %w", TypeRequestTransitioned, ev.RequestID, err)
	}
	return nil
}

// NopPublisher drops events. Used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.LifecycleEvent) error { return nil }
