package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hookflow:delivery:"

// RedisDeduper claims delivery IDs in Redis so multiple gateway
// instances share one view of seen deliveries.
type RedisDeduper struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisDeduper(ctx context.Context, redisURL string, retention time.Duration) (*RedisDeduper, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}

	return &RedisDeduper{client: client, retention: retention}, nil
}

// Claim sets the delivery key only if it does not exist. The TTL bounds
// memory use on the Redis side.
func (d *RedisDeduper) Claim(ctx context.Context, deliveryID string) (bool, error) {
	claimed, err := d.client.SetNX(ctx, keyPrefix+deliveryID, "", d.retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery ID: %w", err)
	}

	return claimed, nil
}

// StoreResult replaces the claim placeholder with the intake response,
// keeping the original TTL semantics by rewriting the expiry.
func (d *RedisDeduper) StoreResult(ctx context.Context, deliveryID string, result []byte) error {
	err := d.client.Set(ctx, keyPrefix+deliveryID, result, d.retention).Err()
	if err != nil {
		return fmt.Errorf("failed to store delivery result: %w", err)
	}

	return nil
}

// Result returns the stored intake response for a delivery, or nil when
// none was recorded.
func (d *RedisDeduper) Result(ctx context.Context, deliveryID string) ([]byte, error) {
	value, err := d.client.Get(ctx, keyPrefix+deliveryID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load delivery result: %w", err)
	}

	if len(value) == 0 {
		return nil, nil
	}

	return value, nil
}

// Release drops the claim so a later retry of the same delivery is
// treated as new.
func (d *RedisDeduper) Release(ctx context.Context, deliveryID string) error {
	err := d.client.Del(ctx, keyPrefix+deliveryID).Err()
	if err != nil {
		return fmt.Errorf("failed to release delivery claim: %w", err)
	}

	return nil
}

func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
