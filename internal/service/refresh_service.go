package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// refreshLockKey elects a single refresh leader across instances.
const refreshLockKey = "refresh"

// RefreshService periodically re-fetches provider listings and broadcasts
// them on the bus, but only when the content actually changed since the last
// broadcast. A failed fetch never shrinks the broadcast: a provider that
// errors keeps the markets it contributed to the previous snapshot.
type RefreshService struct {
	markets  *MarketService
	bus      domain.SignalBus
	locks    domain.LockManager
	notifier notifier
	logger   *slog.Logger

	interval  time.Duration
	listLimit int

	// lastPayload is the JSON listing from the previous successful refresh
	// and lastByProvider holds each provider's slice of it, so a failed
	// provider's markets can be carried forward instead of dropped. Only the
	// single elected leader mutates them.
	lastPayload    []byte
	lastByProvider map[domain.Provider][]domain.NormalizedMarket
}

// NewRefreshService creates a RefreshService. notifier may be nil.
func NewRefreshService(
	markets *MarketService,
	bus domain.SignalBus,
	locks domain.LockManager,
	n notifier,
	interval time.Duration,
	listLimit int,
	logger *slog.Logger,
) *RefreshService {
	return &RefreshService{
		markets:        markets,
		bus:            bus,
		locks:          locks,
		notifier:       n,
		interval:       interval,
		listLimit:      listLimit,
		lastByProvider: make(map[domain.Provider][]domain.NormalizedMarket),
		logger:         logger.With(slog.String("component", "refresh_service")),
	}
}

// Run refreshes listings on the configured interval until ctx is cancelled.
func (s *RefreshService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "refresh poller started",
		slog.Duration("interval", s.interval),
		slog.Int("list_limit", s.listLimit),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "refresh poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshOnce(ctx); err != nil {
				s.logger.WarnContext(ctx, "refresh failed",
					slog.String("error", err.Error()),
				)
				if s.notifier != nil {
					_ = s.notifier.Notify(ctx, "refresh_failed", "Refresh failed", err.Error())
				}
			}
		}
	}
}

// RefreshOnce performs a single refresh cycle: acquire leadership, fetch all
// provider listings, diff against the previous snapshot, and publish on
// change. When another instance holds the refresh lock the cycle is a no-op.
func (s *RefreshService) RefreshOnce(ctx context.Context) error {
	unlock, err := s.locks.Acquire(ctx, refreshLockKey, s.interval)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return nil
		}
		return fmt.Errorf("refresh_service: acquire lock: %w", err)
	}
	defer unlock()

	results, errs := s.markets.ListAll(ctx, domain.ListOpts{Limit: s.listLimit})
	if len(results) == 0 && len(errs) > 0 {
		return fmt.Errorf("refresh_service: every provider failed")
	}

	// A failed provider keeps its previous slice so a transient error never
	// shrinks the broadcast listing. Successful providers replace theirs.
	var markets []domain.NormalizedMarket
	for _, p := range domain.Providers {
		if err, failed := errs[p]; failed {
			s.logger.WarnContext(ctx, "provider refresh failed, reusing previous listing",
				slog.String("provider", string(p)),
				slog.String("error", err.Error()),
			)
			markets = append(markets, s.lastByProvider[p]...)
			continue
		}
		fetched, ok := results[p]
		if !ok {
			continue
		}
		s.lastByProvider[p] = fetched
		markets = append(markets, fetched...)
	}

	// All providers degrading at once looks like an outage, not an empty
	// universe. Keep the previous listing.
	if len(markets) == 0 && len(s.lastPayload) > 0 {
		return fmt.Errorf("refresh_service: all providers returned no markets")
	}

	payload, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("refresh_service: marshal listing: %w", err)
	}

	if bytes.Equal(payload, s.lastPayload) {
		s.logger.DebugContext(ctx, "listing unchanged")
		return nil
	}

	if err := s.bus.Publish(ctx, ChannelRefresh, payload); err != nil {
		return fmt.Errorf("refresh_service: publish listing: %w", err)
	}
	s.lastPayload = payload

	s.logger.InfoContext(ctx, "listing refreshed",
		slog.Int("markets", len(markets)),
	)
	return nil
}
