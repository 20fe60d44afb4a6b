// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/lessons/internal/platform/constants"
)

// RedisStatsCache implements [StatsCache] as a single JSON value.
type RedisStatsCache struct {
	client *redis.Client
}

// NewRedisStatsCache creates a cache backed by client.
func NewRedisStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

func (cache *RedisStatsCache) Get(context context.Context) (*Stats, error) {
	payload, err := cache.client.Get(context, constants.RedisKeyAdminStats).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats_cache_get_failed: %w", err)
	}

	stats := &Stats{}
	if err := json.Unmarshal(payload, stats); err != nil {
		// A payload from an older shape is treated as a miss.
		return nil, nil
	}
	return stats, nil
}

func (cache *RedisStatsCache) Set(context context.Context, stats *Stats, ttl time.Duration) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats_cache_encode_failed: %w", err)
	}
	if err := cache.client.Set(context, constants.RedisKeyAdminStats, payload, ttl).Err(); err != nil {
		return fmt.Errorf("stats_cache_set_failed: %w", err)
	}
	return nil
}

func (cache *RedisStatsCache) Invalidate(context context.Context) error {
	if err := cache.client.Del(context, constants.RedisKeyAdminStats).Err(); err != nil {
		return fmt.Errorf("stats_cache_invalidate_failed: %w", err)
	}
	return nil
}
