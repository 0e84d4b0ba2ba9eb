package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	slotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, slotsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		slotsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, slotsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, slotsTTL: slotsTTL}
}

// GetSlots returns nil, nil on a cache miss.
func (c *RedisCache) GetSlots(ctx context.Context) ([]domain.Slot, error) {
	data, err := c.client.Get(ctx, slotsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var slots []domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetSlots(ctx context.Context, slots []domain.Slot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotsKey(), payload, c.slotsTTL).Err()
}

func (c *RedisCache) InvalidateSlots(ctx context.Context) error {
	return c.client.Del(ctx, slotsKey()).Err()
}

// AcquireIdempotencyKey claims key for ttl. It returns false when the key is
// already held by an earlier request.
func (c *RedisCache) AcquireIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, idempotencyKey(key), "processing", ttl).Result()
}

func (c *RedisCache) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	return c.client.Del(ctx, idempotencyKey(key)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func slotsKey() string {
	return "cache:slots"
}

func idempotencyKey(key string) string {
	return "idempotency:reservation:" + key
}
