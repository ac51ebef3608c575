package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const favoritesKeyPrefix = "favorites:"

// FavoriteCache implements repository.FavoriteCache using Redis. Each user's
// favorite ids are stored as one JSON array so an empty list is cacheable.
type FavoriteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFavoriteCache creates a new Redis-backed favorites cache.
func NewFavoriteCache(client *redis.Client, ttl time.Duration) *FavoriteCache {
	return &FavoriteCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *FavoriteCache) Get(ctx context.Context, userID string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, favoritesKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get favorites: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, fmt.Errorf("unmarshal favorites: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, true, nil
}

func (c *FavoriteCache) Set(ctx context.Context, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	if err := c.client.Set(ctx, favoritesKeyPrefix+userID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set favorites: %w", err)
	}
	return nil
}

func (c *FavoriteCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, favoritesKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del favorites: %w", err)
	}
	return nil
}
