package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quadra/internal/config"
	"quadra/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const approvedLocationsKey = "locations:approved"

// RedisLocationCache fronts the approved-location listing. Every error is
// treated as a miss; the caller falls back to the database.
type RedisLocationCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zerolog.Logger
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	client := redis.NewClient(options)

	return client
}

func NewRedisLocationCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisLocationCache {
	return &RedisLocationCache{
		client: client,
		ttl:    ttl,
		log:    logger,
	}
}

func (r *RedisLocationCache) GetApproved(ctx context.Context) ([]models.Location, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}

	val, err := r.client.Get(ctx, approvedLocationsKey).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn().Err(err).Msg("location cache read failed")
		return nil, false
	}

	var locations []models.Location
	if err := json.Unmarshal([]byte(val), &locations); err != nil {
		r.log.Warn().Err(err).Msg("location cache entry is corrupt")
		return nil, false
	}

	return locations, true
}

func (r *RedisLocationCache) SetApproved(ctx context.Context, locations []models.Location) error {
	if r == nil || r.client == nil {
		return nil
	}

	data, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("failed to marshal locations: %w", err)
	}

	if err := r.client.Set(ctx, approvedLocationsKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set locations in redis: %w", err)
	}

	return nil
}

func (r *RedisLocationCache) Invalidate(ctx context.Context) error {
	if r == nil || r.client == nil {
		return nil
	}

	if err := r.client.Del(ctx, approvedLocationsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate location cache: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
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
