package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL           string
	HTTPPort              string
	MaxUploadBytes        int64
	InboxDir              string
	InboxInterval         time.Duration
	ParseConcurrency      int
	DefaultMergeStrategy  string
	AccountSlug           string
	GoogleSheetsID        string
	GoogleCredentialsJSON string
	AdminAPIKey           string
	LogLevel              slog.Level
}

// LoadDotEnv reads variables from the given .env files into the environment without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:           envOrDefault("DATABASE_URL", ""),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		MaxUploadBytes:        int64(envOrDefaultInt("MAX_UPLOAD_BYTES", 10<<20)),
		InboxDir:              envOrDefault("INBOX_DIR", ""),
		InboxInterval:         envOrDefaultDuration("INBOX_INTERVAL", 1*time.Minute),
		ParseConcurrency:      envOrDefaultInt("PARSE_CONCURRENCY", 4),
		DefaultMergeStrategy:  envOrDefault("DEFAULT_MERGE_STRATEGY", "add"),
		AccountSlug:           envOrDefault("ACCOUNT_SLUG", "default"),
		GoogleSheetsID:        envOrDefault("GOOGLE_SHEETS_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		AdminAPIKey:           envOrDefault("ADMIN_API_KEY", ""),
		LogLevel:              envOrDefaultLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// RequireDatabase returns the database URL, warning when it is missing.
func (c Config) RequireDatabase() string {
	if c.DatabaseURL == "" {
		slog.Warn("required env var not set", "key", "DATABASE_URL")
	}
	return c.DatabaseURL
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultLevel(key string, defaultVal slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", defaultVal)
		return defaultVal
	}
	return level
}
