package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/signalboard/signalboard/internal/domain"
)

// MarketCache implements domain.MarketCache using Redis hashes with JSON-
// serialized normalized markets.
//
// Key schema:
//
//	market:{provider}:{id} - hash with field "data" containing JSON
type MarketCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMarketCache creates a MarketCache backed by the given Client. Entries
// expire after ttl.
func NewMarketCache(c *Client, ttl time.Duration) *MarketCache {
	return &MarketCache{rdb: c.Underlying(), ttl: ttl}
}

func marketKey(provider domain.Provider, id string) string {
	return "market:" + string(provider) + ":" + id
}

// Set stores a normalized market in the cache with the configured TTL.
func (mc *MarketCache) Set(ctx context.Context, market domain.NormalizedMarket) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s: %w", market.ID, err)
	}

	key := marketKey(market.Provider, market.ID)

	pipe := mc.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, mc.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set market %s: %w", market.ID, err)
	}
	return nil
}

// Get retrieves a normalized market by provider and ID from the cache.
// It returns domain.ErrNotFound when the key does not exist.
func (mc *MarketCache) Get(ctx context.Context, provider domain.Provider, id string) (domain.NormalizedMarket, error) {
	data, err := mc.rdb.HGet(ctx, marketKey(provider, id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NormalizedMarket{}, domain.ErrNotFound
		}
		return domain.NormalizedMarket{}, fmt.Errorf("redis: get market %s: %w", id, err)
	}

	var market domain.NormalizedMarket
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("redis: unmarshal market %s: %w", id, err)
	}
	return market, nil
}

// Invalidate removes a cached market.
func (mc *MarketCache) Invalidate(ctx context.Context, provider domain.Provider, id string) error {
	if err := mc.rdb.Del(ctx, marketKey(provider, id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate market %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)
