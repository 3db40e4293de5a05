package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"repairhub/config"
)

// CacheClient backs the rollup cache.
var CacheClient *redis.Client

// InitCache connects the rollup cache client. A failed ping leaves CacheClient
// nil and the service runs without a cache.
func InitCache() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis cache unavailable, rollups will not be cached: %v", err)
		_ = client.Close()
		return nil
	}
	CacheClient = client
	return CacheClient
}

// QueueRedisOpt points asynq at the lifecycle event queue database.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
