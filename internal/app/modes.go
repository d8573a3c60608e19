package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/server"
	"github.com/signalboard/signalboard/internal/server/handler"
	"github.com/signalboard/signalboard/internal/server/ws"
	"github.com/signalboard/signalboard/internal/service"
)

const (
	// archiveLockKey elects a single instance to roll the monthly archive.
	archiveLockKey = "archive"

	// archiveCheckInterval is how often the archive job re-rolls the previous
	// month. Re-running is idempotent; the archive object is overwritten.
	archiveCheckInterval = 24 * time.Hour
)

// ServerMode starts the HTTP API and WebSocket hub.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	if !a.cfg.Server.Enabled {
		a.logger.WarnContext(ctx, "server.enabled is false, but server mode always starts the HTTP API")
	}
	a.startHTTPServer(ctx, g, deps)

	return g.Wait()
}

// RefreshMode starts the background listing poller and the monthly archive
// job. No HTTP API is served.
func (a *App) RefreshMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting refresh mode")

	g, ctx := errgroup.WithContext(ctx)

	if !a.cfg.Refresh.Enabled {
		a.logger.WarnContext(ctx, "refresh.enabled is false, but refresh mode always runs the poller")
	}
	a.startRefreshPoller(ctx, g, deps)
	a.startArchiveLoop(ctx, g, deps)

	return g.Wait()
}

// FullMode starts every subsystem: the HTTP API, the WebSocket hub, the
// refresh poller, and the monthly archive job.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}
	if a.cfg.Refresh.Enabled {
		a.startRefreshPoller(ctx, g, deps)
	}
	a.startArchiveLoop(ctx, g, deps)

	return g.Wait()
}

// startHTTPServer builds the services and handlers, registers the WebSocket
// hub, and adds the HTTP server goroutines to the given errgroup. The server
// is shut down gracefully when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	markets := service.NewMarketService(deps.Providers, deps.MarketCache, a.logger)
	signals := service.NewSignalService(
		markets, deps.LLM, deps.Search,
		deps.SignalBus, deps.RateLimiter, deps.Notifier,
		a.logger,
	)
	threads := service.NewThreadService(deps.ThreadStore, a.logger)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(
		server.Config{
			Port:            a.cfg.Server.Port,
			CORSOrigins:     a.cfg.Server.CORSOrigins,
			APIKey:          a.cfg.Server.ApiKey,
			RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
		},
		server.Handlers{
			Health:  handler.NewHealthHandler(a.logger),
			Markets: handler.NewMarketHandler(markets, a.logger),
			Analyze: handler.NewAnalyzeHandler(signals, a.logger),
			Threads: handler.NewThreadHandler(threads, a.logger),
			Signals: handler.NewSignalsHandler(deps.BlobReader, a.logger),
		},
		hub,
		deps.RateLimiter,
		a.logger,
	)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startRefreshPoller adds the background listing-refresh goroutine to the
// given errgroup.
func (a *App) startRefreshPoller(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	markets := service.NewMarketService(deps.Providers, deps.MarketCache, a.logger)
	refresh := service.NewRefreshService(
		markets, deps.SignalBus, deps.LockManager, deps.Notifier,
		a.cfg.Refresh.Interval.Duration, a.cfg.Refresh.ListLimit,
		a.logger,
	)
	g.Go(func() error {
		err := refresh.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("refresh poller: %w", err)
	})
}

// startArchiveLoop adds the monthly archive goroutine to the given errgroup.
// Once a day the elected instance rolls the previous month's analyses from
// the signal stream into a JSONL archive object.
func (a *App) startArchiveLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	g.Go(func() error {
		ticker := time.NewTicker(archiveCheckInterval)
		defer ticker.Stop()

		for {
			a.archiveOnce(ctx, deps)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}

// archiveOnce archives the previous calendar month under a distributed lock.
// Failures are logged; the next tick retries.
func (a *App) archiveOnce(ctx context.Context, deps *Dependencies) {
	unlock, err := deps.LockManager.Acquire(ctx, archiveLockKey, time.Hour)
	if errors.Is(err, domain.ErrLockHeld) {
		return
	}
	if err != nil {
		a.logger.WarnContext(ctx, "archive: lock acquire failed",
			slog.String("error", err.Error()),
		)
		return
	}
	defer unlock()

	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := firstOfMonth.AddDate(0, -1, 0)

	count, err := deps.Archiver.ArchiveMonth(ctx, lastMonth)
	if err != nil {
		a.logger.ErrorContext(ctx, "archive: month roll failed",
			slog.String("month", lastMonth.Format("2006-01")),
			slog.String("error", err.Error()),
		)
		return
	}
	if count > 0 {
		a.logger.InfoContext(ctx, "archive: month rolled",
			slog.String("month", lastMonth.Format("2006-01")),
			slog.Int64("analyses", count),
		)
	}
}
