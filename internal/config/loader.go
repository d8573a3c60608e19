package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SIGBOARD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SIGBOARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "SIGBOARD_POLYMARKET_GAMMA_HOST")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "SIGBOARD_KALSHI_BASE_URL")

	// ── Simmer ──
	setStr(&cfg.Simmer.BaseURL, "SIGBOARD_SIMMER_BASE_URL")
	setStr(&cfg.Simmer.ApiKey, "SIGBOARD_SIMMER_API_KEY")
	setStr(&cfg.Simmer.ApiSecret, "SIGBOARD_SIMMER_API_SECRET")

	// ── LLM ──
	setStr(&cfg.LLM.BaseURL, "SIGBOARD_LLM_BASE_URL")
	setStr(&cfg.LLM.ApiKey, "SIGBOARD_LLM_API_KEY")
	setStr(&cfg.LLM.ApiKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.LLM.Model, "SIGBOARD_LLM_MODEL")
	setInt(&cfg.LLM.MaxTokens, "SIGBOARD_LLM_MAX_TOKENS")
	setFloat64(&cfg.LLM.Temperature, "SIGBOARD_LLM_TEMPERATURE")
	setDuration(&cfg.LLM.Timeout, "SIGBOARD_LLM_TIMEOUT")

	// ── Search ──
	setStr(&cfg.Search.BaseURL, "SIGBOARD_SEARCH_BASE_URL")
	setStr(&cfg.Search.ApiKey, "SIGBOARD_SEARCH_API_KEY")
	setStr(&cfg.Search.ApiKey, "TAVILY_API_KEY") // compatibility alias
	setInt(&cfg.Search.MaxResults, "SIGBOARD_SEARCH_MAX_RESULTS")
	setStr(&cfg.Search.Topic, "SIGBOARD_SEARCH_TOPIC")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SIGBOARD_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "SIGBOARD_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "SIGBOARD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SIGBOARD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SIGBOARD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SIGBOARD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SIGBOARD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SIGBOARD_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SIGBOARD_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SIGBOARD_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SIGBOARD_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SIGBOARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SIGBOARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SIGBOARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SIGBOARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SIGBOARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SIGBOARD_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLMinutes, "SIGBOARD_REDIS_CACHE_TTL_MINUTES")
	setInt(&cfg.Redis.StreamMaxLen, "SIGBOARD_REDIS_STREAM_MAX_LEN")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SIGBOARD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SIGBOARD_S3_REGION")
	setStr(&cfg.S3.Bucket, "SIGBOARD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SIGBOARD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SIGBOARD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SIGBOARD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SIGBOARD_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SIGBOARD_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SIGBOARD_SERVER_PORT")
	setStr(&cfg.Server.ApiKey, "SIGBOARD_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "SIGBOARD_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMin, "SIGBOARD_SERVER_RATE_LIMIT_PER_MIN")

	// ── Refresh ──
	setBool(&cfg.Refresh.Enabled, "SIGBOARD_REFRESH_ENABLED")
	setDuration(&cfg.Refresh.Interval, "SIGBOARD_REFRESH_INTERVAL")
	setInt(&cfg.Refresh.ListLimit, "SIGBOARD_REFRESH_LIST_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SIGBOARD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SIGBOARD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SIGBOARD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SIGBOARD_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SIGBOARD_MODE")
	setStr(&cfg.LogLevel, "SIGBOARD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
