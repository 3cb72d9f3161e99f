package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// RedisStorage keeps each user's cart as a single serialized value under
// cart:<uid>. No TTL: the cart is the sole durable copy between sessions,
// not a cache.
type RedisStorage struct {
	client *redis.Client
}

func (r *RedisStorage) Get(ctx context.Context, userUID string) ([]byte, error) {
	data, err := r.client.Get(ctx, cartKey(userUID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, userUID string, data []byte) error {
	if err := r.client.Set(ctx, cartKey(userUID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, userUID string) error {
	if err := r.client.Del(ctx, cartKey(userUID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userUID string) string {
	return fmt.Sprintf("cart:%s", userUID)
}
