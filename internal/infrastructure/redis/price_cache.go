package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"cartshare/internal/domain"
)

// RedisPriceCache stores price-lookup results under a storage-enforced
// TTL: redis expires the key itself, no application sweeping involved.
// SET on an existing key overwrites, which is exactly the last-write-wins
// rule for racing lookups.
type RedisPriceCache struct {
	client *redis.Client
}

func NewRedisPriceCache(client *redis.Client) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

func cacheKey(key string) string {
	return fmt.Sprintf("prices:%s", key)
}

func (r *RedisPriceCache) Get(ctx context.Context, key string) ([]domain.PriceResult, bool, error) {
	data, err := r.client.Get(ctx, cacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var results []domain.PriceResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func (r *RedisPriceCache) Set(ctx context.Context, key string, results []domain.PriceResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(key), string(data), ttl).Err()
}
