// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package idempotency makes non-idempotent mutations safe to retry.

Toggle operations are self-inverse: blindly retrying a toggle whose first
attempt succeeded but was never acknowledged flips the state back. A client
that sends an Idempotency-Key header gets the first response replayed for
every retry carrying the same key.

# Lifecycle

 1. Stored response found -> replay it.
 2. Otherwise acquire a short lock; a concurrent duplicate gets CONFLICT.
 3. Under the lock, look again and replay a response stored meanwhile.
 4. Run the handler, store any non-5xx response, release the lock.
*/
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/lessons/internal/platform/constants"
)

// Record is a stored HTTP response.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store persists idempotency records.
type Store interface {
	Load(ctx context.Context, key string) (*Record, error)
	Acquire(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, record *Record) error
	Release(ctx context.Context, key string) error
}

// RedisStore implements [Store] on Redis.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore constructs a Redis-backed idempotency store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		ttl:     constants.IdempotencyTTL,
		lockTTL: constants.IdempotencyLockTTL,
	}
}

func recordKey(key string) string { return constants.RedisPrefixIdempotency + key }
func lockKey(key string) string   { return constants.RedisPrefixIdempotency + key + ":lock" }

// Load returns the stored record, or nil on a miss.
func (store *RedisStore) Load(ctx context.Context, key string) (*Record, error) {
	raw, err := store.client.Get(ctx, recordKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_idempotency_get_failed: %w", err)
	}

	record := &Record{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("redis_idempotency_decode_failed: %w", err)
	}

	return record, nil
}

// Acquire takes the in-flight lock for key. It reports false if another
// request already holds it.
func (store *RedisStore) Acquire(ctx context.Context, key string) (bool, error) {
	acquired, err := store.client.SetNX(ctx, lockKey(key), "1", store.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis_idempotency_lock_failed: %w", err)
	}
	return acquired, nil
}

// Save stores the response for replay.
func (store *RedisStore) Save(ctx context.Context, key string, record *Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_idempotency_encode_failed: %w", err)
	}

	if err := store.client.Set(ctx, recordKey(key), raw, store.ttl).Err(); err != nil {
		return fmt.Errorf("redis_idempotency_set_failed: %w", err)
	}

	return nil
}

// Release drops the in-flight lock.
func (store *RedisStore) Release(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, lockKey(key)).Err(); err != nil {
		return fmt.Errorf("redis_idempotency_unlock_failed: %w", err)
	}
	return nil
}
