package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"DATABASE_URL", "HTTP_PORT", "MAX_UPLOAD_BYTES", "INBOX_DIR", "INBOX_INTERVAL",
	"PARSE_CONCURRENCY", "DEFAULT_MERGE_STRATEGY", "ACCOUNT_SLUG", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want 10MiB", cfg.MaxUploadBytes)
	}
	if cfg.InboxInterval != time.Minute {
		t.Errorf("InboxInterval = %v, want 1m", cfg.InboxInterval)
	}
	if cfg.ParseConcurrency != 4 {
		t.Errorf("ParseConcurrency = %d, want 4", cfg.ParseConcurrency)
	}
	if cfg.DefaultMergeStrategy != "add" || cfg.AccountSlug != "default" {
		t.Errorf("strategy/slug = %q/%q, want add/default", cfg.DefaultMergeStrategy, cfg.AccountSlug)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("INBOX_DIR", "/var/inbox")
	t.Setenv("INBOX_INTERVAL", "30s")
	t.Setenv("PARSE_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.InboxDir != "/var/inbox" || cfg.InboxInterval != 30*time.Second {
		t.Errorf("inbox = %q every %v", cfg.InboxDir, cfg.InboxInterval)
	}
	if cfg.ParseConcurrency != 8 {
		t.Errorf("ParseConcurrency = %d, want 8", cfg.ParseConcurrency)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARSE_CONCURRENCY", "not-a-number")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	t.Setenv("INBOX_INTERVAL", "invalid-duration")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()

	if cfg.ParseConcurrency != 4 {
		t.Errorf("ParseConcurrency = %d, want default 4 on invalid input", cfg.ParseConcurrency)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want default on negative input", cfg.MaxUploadBytes)
	}
	if cfg.InboxInterval != time.Minute {
		t.Errorf("InboxInterval = %v, want default 1m on invalid input", cfg.InboxInterval)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want default INFO on invalid input", cfg.LogLevel)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ACCOUNT_SLUG=family\nHTTP_PORT=1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	cfg := Load()

	if cfg.AccountSlug != "family" {
		t.Errorf("AccountSlug = %q, want value from .env", cfg.AccountSlug)
	}
	if cfg.HTTPPort != "7000" {
		t.Errorf("HTTPPort = %q, want the already-set 7000", cfg.HTTPPort)
	}
}
