package cron

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"repairhub/models"
	"repairhub/services/tasks"
)

// RollupInvalidator drops a provider's cached rollups.
type RollupInvalidator interface {
	InvalidateProvider(ctx context.Context, providerID string) error
}

// InitLifecycleWorker runs the lifecycle event worker in background and returns
// the server so the caller can shut it down.
func InitLifecycleWorker(redisOpts asynq.RedisClientOpt, invalidator RollupInvalidator, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRequestTransitioned, HandleTransitionTask(invalidator, logger))

	go monitorRedisConnection(redisOpts, logger)

	go func() {
		logger.Info("[LifecycleWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[LifecycleWorker] failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[LifecycleWorker] max retry attempts reached, events will not be processed")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

// HandleTransitionTask invalidates the provider's cached rollups once a request
// reaches completed. Other transitions do not change any rollup.
func HandleTransitionTask(invalidator RollupInvalidator, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		ev, err := tasks.ParseTransitionTask(task)
		if err != nil {
			logger.Error("[LifecycleHandler] invalid payload", zap.Error(err))
			return err
		}

		log := logger.With(zap.String("requestId", ev.RequestID), zap.String("providerId", ev.ProviderID))
		if ev.To != models.StatusCompleted {
			log.Debug("[LifecycleHandler] transition recorded", zap.String("to", string(ev.To)))
			return nil
		}
		if invalidator == nil {
			return nil
		}
		if err := invalidator.InvalidateProvider(ctx, ev.ProviderID); err != nil {
			log.Warn("[LifecycleHandler] failed to invalidate rollup cache", zap.Error(err))
			return err
		}
		log.Info("[LifecycleHandler] rollup cache invalidated")
		return nil
	}
}

// monitorRedisConnection pings the queue database periodically to surface outages.
func monitorRedisConnection(opts asynq.RedisClientOpt, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	defer client.Close()

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("[LifecycleWorker] Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
