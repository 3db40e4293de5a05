package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"repairhub/models"
)

// ErrStaleGeneration is returned by Set when the provider was invalidated
// after the rollup's inputs were read.
var ErrStaleGeneration = errors.New("rollup computed before the latest invalidation")

// RollupCache sits in front of the aggregator for read-heavy callers. Entries
// expire on their own, and completions invalidate the provider's entries.
//
// Each provider carries a generation counter that Invalidate bumps. A reader
// takes the generation before reading the stores and hands it to Set, which
// refuses to write if an invalidation happened in between.
type RollupCache interface {
	Generation(ctx context.Context, providerID string) (int64, error)
	Get(ctx context.Context, providerID string, g models.PeriodGranularity) (*models.PerformanceRollup, bool, error)
	Set(ctx context.Context, rollup models.PerformanceRollup, generation int64) error
	Invalidate(ctx context.Context, providerID string) error
}

const rollupCachePrefix = "rollup:"

type RedisRollupCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRollupCache(client *redis.Client, ttl time.Duration) *RedisRollupCache {
	return &RedisRollupCache{client: client, ttl: ttl}
}

func rollupKey(providerID string, g models.PeriodGranularity) string {
	return fmt.Sprintf("%s%s:%s", rollupCachePrefix, providerID, g)
}

func generationKey(providerID string) string {
	return fmt.Sprintf("%s%s:gen", rollupCachePrefix, providerID)
}

func providerKeys(providerID string) []string {
	return []string{
		rollupKey(providerID, models.PeriodDay),
		rollupKey(providerID, models.PeriodWeek),
		rollupKey(providerID, models.PeriodMonth),
		rollupKey(providerID, models.PeriodYear),
	}
}

func (c *RedisRollupCache) Generation(ctx context.Context, providerID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(providerID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *RedisRollupCache) Get(ctx context.Context, providerID string, g models.PeriodGranularity) (*models.PerformanceRollup, bool, error) {
	data, err := c.client.Get(ctx, rollupKey(providerID, g)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rollup models.PerformanceRollup
	if err := json.Unmarshal(data, &rollup); err != nil {
		return nil, false, err
	}
	return &rollup, true, nil
}

// Set writes under WATCH on the generation key, so an Invalidate that lands
// between the check and the write aborts the transaction.
func (c *RedisRollupCache) Set(ctx context.Context, rollup models.PerformanceRollup, generation int64) error {
	b, err := json.Marshal(rollup)
	if err != nil {
		return err
	}
	genKey := generationKey(rollup.ProviderID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return ErrStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rollupKey(rollup.ProviderID, rollup.Granularity), b, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err == redis.TxFailedErr {
		return ErrStaleGeneration
	}
	return err
}

func (c *RedisRollupCache) Invalidate(ctx context.Context, providerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(providerID))
		pipe.Del(ctx, providerKeys(providerID)...)
		return nil
	})
	return err
}
