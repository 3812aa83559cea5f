package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"PowerPrice/internal/model"
)

// RedisStore keeps rates under "rate:<pair>" keys.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and fails if the server does not answer a ping.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func rateKey(pair string) string { return "rate:" + pair }

func (r *RedisStore) LoadRate(ctx context.Context, pair string) (*model.ConversionRate, error) {
	data, err := r.client.Get(ctx, rateKey(pair)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rate from redis: %w", err)
	}

	var rate model.ConversionRate
	if err := json.Unmarshal(data, &rate); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate: %w", err)
	}
	return &rate, nil
}

func (r *RedisStore) SaveRate(ctx context.Context, pair string, rate model.ConversionRate) error {
	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to marshal rate: %w", err)
	}
	if err := r.client.Set(ctx, rateKey(pair), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set rate in redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
