// Package service composes the provider adapters, cache, signal bus, and
// stores into the operations exposed over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/resolve"
	"github.com/signalboard/signalboard/internal/search"
)

// searchListLimit caps how many markets are pulled from each provider when
// serving a search query.
const searchListLimit = 100

// ProviderClient is the slice of a platform adapter the market service needs.
// All three platform clients implement it.
type ProviderClient interface {
	ListMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.NormalizedMarket, error)
	GetMarket(ctx context.Context, id string) (domain.NormalizedMarket, error)
	Provider() domain.Provider
}

// MarketService aggregates listings across providers, caches detail lookups,
// resolves pasted market URLs, and serves ranked cross-provider search.
type MarketService struct {
	clients map[domain.Provider]ProviderClient
	cache   domain.MarketCache
	logger  *slog.Logger
}

// NewMarketService creates a MarketService over the given provider clients.
func NewMarketService(
	clients []ProviderClient,
	cache domain.MarketCache,
	logger *slog.Logger,
) *MarketService {
	byProvider := make(map[domain.Provider]ProviderClient, len(clients))
	for _, c := range clients {
		byProvider[c.Provider()] = c
	}
	return &MarketService{
		clients: byProvider,
		cache:   cache,
		logger:  logger.With(slog.String("component", "market_service")),
	}
}

// List returns normalized listings. With a named provider it queries that
// provider only; with an empty provider it fans out to every provider
// concurrently and concatenates results in precedence order. A provider
// failure degrades to an empty slice for that provider.
func (s *MarketService) List(ctx context.Context, provider domain.Provider, opts domain.ListOpts) ([]domain.NormalizedMarket, error) {
	if provider != "" {
		client, ok := s.clients[provider]
		if !ok {
			return nil, fmt.Errorf("market_service: list: %w: %q", domain.ErrUnsupportedProvider, provider)
		}
		markets, err := client.ListMarkets(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("market_service: list %s: %w", provider, err)
		}
		return markets, nil
	}

	results := make([][]domain.NormalizedMarket, len(domain.Providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range domain.Providers {
		client, ok := s.clients[p]
		if !ok {
			continue
		}
		g.Go(func() error {
			markets, err := client.ListMarkets(gctx, opts)
			if err != nil {
				s.logProviderFailure(gctx, "list", p, err)
				return nil
			}
			results[i] = markets
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.NormalizedMarket
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// ListAll fans out to every configured provider concurrently and returns each
// provider's listings and error separately. Unlike List, which degrades a
// failed provider to an empty slice, ListAll preserves per-provider failures
// so callers can decide how to treat a partial result.
func (s *MarketService) ListAll(ctx context.Context, opts domain.ListOpts) (map[domain.Provider][]domain.NormalizedMarket, map[domain.Provider]error) {
	var mu sync.Mutex
	results := make(map[domain.Provider][]domain.NormalizedMarket, len(s.clients))
	errs := make(map[domain.Provider]error)

	g, gctx := errgroup.WithContext(ctx)
	for p, client := range s.clients {
		g.Go(func() error {
			markets, err := client.ListMarkets(gctx, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[p] = err
				return nil
			}
			results[p] = markets
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

// Get returns one market, consulting the cache before the provider. Cache
// write failures are logged and ignored.
func (s *MarketService) Get(ctx context.Context, provider domain.Provider, id string) (domain.NormalizedMarket, error) {
	client, ok := s.clients[provider]
	if !ok {
		return domain.NormalizedMarket{}, fmt.Errorf("market_service: get: %w: %q", domain.ErrUnsupportedProvider, provider)
	}

	if m, err := s.cache.Get(ctx, provider, id); err == nil {
		return m, nil
	}

	m, err := client.GetMarket(ctx, id)
	if err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("market_service: get %s/%s: %w", provider, id, err)
	}

	if cacheErr := s.cache.Set(ctx, m); cacheErr != nil {
		s.logger.WarnContext(ctx, "cache set failed",
			slog.String("provider", string(provider)),
			slog.String("market_id", id),
			slog.String("error", cacheErr.Error()),
		)
	}

	return m, nil
}

// Resolve extracts a provider market reference from pasted text.
func (s *MarketService) Resolve(text string) (domain.MarketRef, bool) {
	return resolve.Resolve(text)
}

// ResolveAndFetch resolves pasted text to a market reference and fetches the
// referenced market. Unresolvable text maps to domain.ErrNotFound.
func (s *MarketService) ResolveAndFetch(ctx context.Context, text string) (domain.NormalizedMarket, error) {
	ref, ok := resolve.Resolve(text)
	if !ok {
		return domain.NormalizedMarket{}, fmt.Errorf("market_service: resolve %q: %w", text, domain.ErrNotFound)
	}
	return s.Get(ctx, ref.Provider, ref.Identifier)
}

// Search fans out to every provider concurrently, filters and ranks each
// provider's listings against the query, then merges globally and truncates
// to limit. A provider failure degrades to its empty slice.
func (s *MarketService) Search(ctx context.Context, query string, limit int) ([]domain.ScoredMarket, error) {
	ranked := make([][]domain.ScoredMarket, len(domain.Providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range domain.Providers {
		client, ok := s.clients[p]
		if !ok {
			continue
		}
		g.Go(func() error {
			markets, err := client.ListMarkets(gctx, domain.ListOpts{Limit: searchListLimit})
			if err != nil {
				s.logProviderFailure(gctx, "search", p, err)
				return nil
			}

			matched := markets[:0:0]
			for _, m := range markets {
				if search.Matches(m, query) {
					matched = append(matched, m)
				}
			}
			ranked[i] = search.Rank(matched, query, limit)
			return nil
		})
	}
	_ = g.Wait()

	return search.Merge(limit, ranked...), nil
}

// logProviderFailure records a degraded provider. Unauthorized responses are
// expected for providers with geo or key restrictions and log at info level.
func (s *MarketService) logProviderFailure(ctx context.Context, op string, p domain.Provider, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.String("provider", string(p)),
		slog.String("error", err.Error()),
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		s.logger.InfoContext(ctx, "provider unavailable", attrs...)
		return
	}
	s.logger.WarnContext(ctx, "provider failed", attrs...)
}
