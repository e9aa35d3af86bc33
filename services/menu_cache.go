package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	menuListCachePrefix  = "menu:items:v:"
	menuCacheVersionKey  = "menu:version"
	defaultMenuCacheTTL  = 5 * time.Minute
	menuCacheSetDeadline = 5 * time.Second
)

// MenuCache caches menu listings in Redis under versioned keys. Writes
// bump the version instead of enumerating keys, which invalidates every
// cached page at once. A nil cache is valid and always misses.
type MenuCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewMenuCache(client *redis.Client, logger *zap.Logger) *MenuCache {
	return &MenuCache{
		redis:  client,
		ttl:    defaultMenuCacheTTL,
		logger: logger,
	}
}

func (mc *MenuCache) GetItemList(ctx context.Context, key string) (*MenuItemListResponse, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}

	version, err := mc.version(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	cached, err := mc.redis.Get(ctx, mc.listKey(version, key)).Result()
	if err != nil {
		return nil, false
	}

	var response MenuItemListResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		mc.logger.Warn("Failed to unmarshal cached menu list", zap.Error(err))
		return nil, false
	}
	return &response, true
}

// SetItemListAsync caches a listing off the request path.
func (mc *MenuCache) SetItemListAsync(key string, response *MenuItemListResponse) {
	if mc == nil || mc.redis == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), menuCacheSetDeadline)
		defer cancel()

		version, err := mc.version(ctx)
		if err != nil || version == 0 {
			return
		}

		payload, err := json.Marshal(response)
		if err != nil {
			mc.logger.Warn("Failed to marshal menu list for cache", zap.Error(err))
			return
		}

		if err := mc.redis.Set(ctx, mc.listKey(version, key), payload, mc.ttl).Err(); err != nil {
			mc.logger.Warn("Failed to cache menu list", zap.Error(err))
		}
	}()
}

// Invalidate bumps the cache version after any menu write.
func (mc *MenuCache) Invalidate(ctx context.Context) {
	if mc == nil || mc.redis == nil {
		return
	}
	if err := mc.redis.Incr(ctx, menuCacheVersionKey).Err(); err != nil {
		mc.logger.Warn("Failed to bump menu cache version", zap.Error(err))
	}
}

func (mc *MenuCache) version(ctx context.Context) (int64, error) {
	version, err := mc.redis.Get(ctx, menuCacheVersionKey).Int64()
	if err == redis.Nil {
		// first use: seed the version so listings become cacheable
		if err := mc.redis.Set(ctx, menuCacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return version, err
}

func (mc *MenuCache) listKey(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", menuListCachePrefix, version, key)
}
