// Package claim applies lifecycle transitions against the request store with
// optimistic concurrency: read, compute, conditionally write, and let the
// caller retry on conflict.
package claim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	requestRepo "repairhub/database/repository/request"
	"repairhub/models"
	"repairhub/services/lifecycle"
	"repairhub/services/tasks"
)

const (
	publishTimeout    = 3 * time.Second
	invalidateTimeout = 2 * time.Second
)

// RollupInvalidator drops a provider's cached rollups.
type RollupInvalidator interface {
	InvalidateProvider(ctx context.Context, providerID string) error
}

// Coordinator serializes competing transitions on one request through the
// store's conditional write. It holds no locks of its own.
type Coordinator struct {
	Store       requestRepo.RequestStore
	Publisher   tasks.EventPublisher
	// Invalidator, when set, runs before AttemptTransition returns a completion.
	Invalidator RollupInvalidator
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewCoordinator(store requestRepo.RequestStore, publisher tasks.EventPublisher, logger *zap.Logger) *Coordinator {
	if publisher == nil {
		publisher = tasks.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{Store: store, Publisher: publisher, Logger: logger, Now: time.Now}
}

// AttemptTransition reads the request, validates ev against the state machine and
// commits the result only if status and claimant are unchanged since the read.
func (c *Coordinator) AttemptTransition(ctx context.Context, requestID string, ev lifecycle.Event, actor lifecycle.Actor, payload lifecycle.Payload) (*models.ServiceRequest, error) {
	actor.ID = strings.TrimSpace(actor.ID)
	logger := c.logger().With(
		zap.String("requestId", requestID),
		zap.String("event", string(ev)),
		zap.String("providerId", actor.ID),
	)

	current, err := c.Store.Get(ctx, requestID)
	if err != nil {
		return nil, c.storeError(logger, "read", err)
	}

	if ev == lifecycle.EventAccept && current.IsClaimed() && current.ProviderID != actor.ID {
		logger.Info("accept rejected, request already claimed", zap.String("claimant", current.ProviderID))
		return nil, ErrClaimConflict
	}

	mutation, err := lifecycle.Apply(*current, ev, actor, payload, c.now())
	if err != nil {
		logger.Info("transition rejected", zap.Error(err))
		return nil, err
	}

	updated, err := c.Store.ConditionalUpdate(ctx, requestID, current.Snapshot(), mutation)
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		logger.Info("transition lost race", zap.String("expectedStatus", string(current.Status)))
		return nil, ErrClaimConflict
	}
	if err != nil {
		return nil, c.storeError(logger, "write", err)
	}

	logger.Info("transition committed", zap.String("status", string(updated.Status)))
	if updated.Status == models.StatusCompleted {
		c.invalidate(ctx, logger, updated.ProviderID)
	}
	c.publish(ctx, logger, models.LifecycleEvent{
		RequestID:  updated.ID,
		ProviderID: updated.ProviderID,
		Event:      string(ev),
		From:       current.Status,
		To:         updated.Status,
		At:         c.now(),
	})
	return updated, nil
}

// publish is best effort: the transition is already authoritative.
func (c *Coordinator) publish(ctx context.Context, logger *zap.Logger, ev models.LifecycleEvent) {
	if c.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := c.Publisher.Publish(ctx, ev); err != nil {
		logger.Warn("failed to publish lifecycle event", zap.Error(err))
	}
}

// invalidate must finish before the caller sees the completion, otherwise a
// following rollup read could be served from the cache.
func (c *Coordinator) invalidate(ctx context.Context, logger *zap.Logger, providerID string) {
	if c.Invalidator == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := c.Invalidator.InvalidateProvider(ctx, providerID); err != nil {
		logger.Error("failed to invalidate rollup cache", zap.Error(err))
	}
}

func (c *Coordinator) storeError(logger *zap.Logger, op string, err error) error {
	if errors.Is(err, requestRepo.ErrNotFound) {
		return ErrNotFound
	}
	logger.Error("request store "+op+" failed", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
