package repository

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/config"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "shareit:rate_limit:"

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisRateLimitRepository считает запросы в фиксированных окнах.
// Ключ создается вместе с TTL в одной транзакции, поэтому окно всегда истекает.
type RedisRateLimitRepository struct {
	client *redis.Client
}

func NewRedisRateLimitRepository(client *redis.Client) *RedisRateLimitRepository {
	return &RedisRateLimitRepository{client: client}
}

func (r *RedisRateLimitRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if window <= 0 {
		window = time.Minute
	}
	redisKey := rateLimitKeyPrefix + key

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// SET NX EX opens the window; INCR keeps the TTL of an existing key.
		pipe.SetNX(ctx, redisKey, 0, window)
		incr = pipe.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
