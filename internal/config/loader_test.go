package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "server"

[llm]
model = "gpt-4o-mini"
timeout = "90s"

[server]
port = 9999
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("Mode = %q, want server", cfg.Mode)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q, want gpt-4o-mini", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout.Duration != 90*time.Second {
		t.Errorf("LLM.Timeout = %v, want 90s", cfg.LLM.Timeout.Duration)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}

	// Untouched fields keep their defaults.
	if cfg.Kalshi.BaseURL != Defaults().Kalshi.BaseURL {
		t.Errorf("Kalshi.BaseURL = %q, want default", cfg.Kalshi.BaseURL)
	}
	if cfg.Redis.CacheTTLMinutes != 5 {
		t.Errorf("Redis.CacheTTLMinutes = %d, want 5", cfg.Redis.CacheTTLMinutes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[redis]
addr = "file-redis:6379"
`)

	// Neutralize compatibility aliases that may be set on the host.
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")

	t.Setenv("SIGBOARD_REDIS_ADDR", "env-redis:6379")
	t.Setenv("SIGBOARD_LLM_API_KEY", "sk-test")
	t.Setenv("SIGBOARD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SIGBOARD_REFRESH_INTERVAL", "2m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Redis.Addr != "env-redis:6379" {
		t.Errorf("Redis.Addr = %q, env should win over file", cfg.Redis.Addr)
	}
	if cfg.LLM.ApiKey != "sk-test" {
		t.Errorf("LLM.ApiKey = %q, want sk-test", cfg.LLM.ApiKey)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Refresh.Interval.Duration != 2*time.Minute {
		t.Errorf("Refresh.Interval = %v, want 2m", cfg.Refresh.Interval.Duration)
	}
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults should validate cleanly: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "banana"
	cfg.Kalshi.BaseURL = ""
	cfg.Simmer.ApiKey = "key-without-secret"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail")
	}
	for _, want := range []string{
		`unknown mode "banana"`,
		"kalshi: base_url",
		"simmer: api_key and api_secret",
		"redis: addr",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%s", want, err)
		}
	}
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.ApiKey = "sk-secret"
	cfg.Postgres.Password = "hunter2"
	cfg.Simmer.ApiKey = "sim-key"
	cfg.Simmer.ApiSecret = "sim-secret"

	red := RedactedConfig(&cfg)

	if red.LLM.ApiKey != "***" || red.Postgres.Password != "***" ||
		red.Simmer.ApiKey != "***" || red.Simmer.ApiSecret != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	// Empty secrets stay empty so logs show which integrations are off.
	if red.Search.ApiKey != "" {
		t.Errorf("Search.ApiKey = %q, want empty", red.Search.ApiKey)
	}
	// The original is untouched.
	if cfg.LLM.ApiKey != "sk-secret" {
		t.Errorf("RedactedConfig mutated the source config")
	}
}
