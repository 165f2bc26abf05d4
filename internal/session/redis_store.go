package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session cache keyed by subject.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(subject string) string {
	return r.prefix + subject
}

func (r *RedisStore) Put(ctx context.Context, rec Record, ttl time.Duration) error {
	if rec.Subject == "" {
		return fmt.Errorf("session: missing subject")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(rec.Subject), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, subject string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(subject)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return &rec, nil
}

func (r *RedisStore) Delete(ctx context.Context, subject string) error {
	return r.client.Del(ctx, r.key(subject)).Err()
}
