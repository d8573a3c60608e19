package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/signalboard/signalboard/internal/blob/s3"
	"github.com/signalboard/signalboard/internal/cache/redis"
	"github.com/signalboard/signalboard/internal/config"
	"github.com/signalboard/signalboard/internal/crypto"
	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/llm"
	"github.com/signalboard/signalboard/internal/notify"
	"github.com/signalboard/signalboard/internal/platform/kalshi"
	"github.com/signalboard/signalboard/internal/platform/polymarket"
	"github.com/signalboard/signalboard/internal/platform/simmer"
	"github.com/signalboard/signalboard/internal/service"
	"github.com/signalboard/signalboard/internal/store/postgres"
	"github.com/signalboard/signalboard/internal/websearch"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Provider clients in precedence order.
	Providers []service.ProviderClient

	// Persistence
	ThreadStore domain.ThreadStore

	// Caches and coordination
	MarketCache domain.MarketCache
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Blob storage
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
	Archiver   domain.SignalArchiver

	// External integrations
	LLM      *llm.Client
	Search   *websearch.Client
	Notifier *notify.Notifier
}

// needsPostgres returns true for modes that serve chat threads and therefore
// require a database connection.
func needsPostgres(mode string) bool {
	switch mode {
	case "server", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Provider clients (precedence order: polymarket, kalshi, simmer) ---
	var simmerAuth *crypto.HMACAuth
	if cfg.Simmer.ApiKey != "" && cfg.Simmer.ApiSecret != "" {
		simmerAuth = &crypto.HMACAuth{
			Key:    cfg.Simmer.ApiKey,
			Secret: cfg.Simmer.ApiSecret,
		}
	}
	deps.Providers = []service.ProviderClient{
		polymarket.NewGammaClient(cfg.Polymarket.GammaHost),
		kalshi.NewClient(cfg.Kalshi.BaseURL),
		simmer.NewClient(cfg.Simmer.BaseURL, simmerAuth),
	}

	// --- PostgreSQL (only for modes that serve threads) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.ThreadStore = postgres.NewThreadStore(pgClient.Pool())
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	cacheTTL := time.Duration(cfg.Redis.CacheTTLMinutes) * time.Minute
	streamMaxLen := int64(10000)
	if cfg.Redis.StreamMaxLen > 0 {
		streamMaxLen = int64(cfg.Redis.StreamMaxLen)
	}

	deps.MarketCache = redis.NewMarketCache(redisClient, cacheTTL)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient, streamMaxLen)

	// --- S3 blob storage (analysis archive) ---
	s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
		Endpoint:       cfg.S3.Endpoint,
		Region:         cfg.S3.Region,
		Bucket:         cfg.S3.Bucket,
		AccessKey:      cfg.S3.AccessKey,
		SecretKey:      cfg.S3.SecretKey,
		UseSSL:         cfg.S3.UseSSL,
		ForcePathStyle: cfg.S3.ForcePathStyle,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: s3: %w", err)
	}
	closers = append(closers, func() { _ = s3Client.Close() })

	deps.BlobWriter = s3blob.NewWriter(s3Client)
	deps.BlobReader = s3blob.NewReader(s3Client)
	deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, deps.SignalBus, service.StreamSignals)

	// --- LLM and web search ---
	deps.LLM = llm.NewClient(llm.ClientConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.ApiKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout.Duration,
	})
	deps.Search = websearch.NewClient(websearch.ClientConfig{
		BaseURL:    cfg.Search.BaseURL,
		APIKey:     cfg.Search.ApiKey,
		MaxResults: cfg.Search.MaxResults,
		Topic:      cfg.Search.Topic,
	})

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
