package domain

import (
	"context"
	"time"
)

// MarketCache provides fast normalized-market lookups keyed by provider + id.
type MarketCache interface {
	Set(ctx context.Context, market NormalizedMarket) error
	Get(ctx context.Context, provider Provider, id string) (NormalizedMarket, error)
	Invalidate(ctx context.Context, provider Provider, id string) error
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking, used to elect a single refresh
// poller when multiple instances run.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// StreamMessage represents a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub fan-out plus durable streams for analyses.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}
