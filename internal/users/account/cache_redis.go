// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/librio/internal/platform/constants"
	redisstore "github.com/taibuivan/librio/internal/platform/redis"
)

// RedisViewerCache implements [ViewerCache] with JSON values under
// [constants.RedisPrefixViewer] inside the deployment keyspace.
type RedisViewerCache struct {
	client   redis.UniversalClient
	keyspace redisstore.Keyspace
}

func NewRedisViewerCache(client redis.UniversalClient, keyspace redisstore.Keyspace) *RedisViewerCache {
	return &RedisViewerCache{client: client, keyspace: keyspace}
}

func (cache *RedisViewerCache) viewerKey(userID string) string {
	return cache.keyspace.Key(constants.RedisPrefixViewer, userID)
}

func (cache *RedisViewerCache) Get(context context.Context, userID string) (*ViewerProfile, bool, error) {
	raw, err := cache.client.Get(context, cache.viewerKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("account: read viewer cache: %w", err)
	}

	var profile ViewerProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false, fmt.Errorf("account: decode viewer cache: %w", err)
	}
	return &profile, true, nil
}

func (cache *RedisViewerCache) Set(context context.Context, userID string, profile *ViewerProfile, ttl time.Duration) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("account: encode viewer cache: %w", err)
	}
	if err := cache.client.Set(context, cache.viewerKey(userID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("account: write viewer cache: %w", err)
	}
	return nil
}

func (cache *RedisViewerCache) Delete(context context.Context, userID string) error {
	if err := cache.client.Del(context, cache.viewerKey(userID)).Err(); err != nil {
		return fmt.Errorf("account: drop viewer cache: %w", err)
	}
	return nil
}
