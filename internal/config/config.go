package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	// Catalog source: exactly one of DatabaseURL (postgres) or CatalogFile
	// (JSON file) must be set.
	DatabaseURL string
	CatalogFile string

	// RedisURL enables the write-behind vote journal. Empty disables
	// persistence (votes live for the process lifetime only).
	RedisURL string

	// DebounceWindow bounds how long a dirty category may wait before
	// recomputation; bursts of votes inside the window collapse into one
	// recomputation and one notification.
	DebounceWindow time.Duration

	// ActivityWindow is the sliding window for the active-user set.
	ActivityWindow time.Duration

	// MaxSocketClients caps concurrent WebSocket subscribers.
	MaxSocketClients int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CatalogFile: getEnv("CATALOG_FILE", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
	}

	if cfg.DatabaseURL == "" && cfg.CatalogFile == "" {
		return nil, fmt.Errorf("one of DATABASE_URL or CATALOG_FILE is required")
	}
	if cfg.DatabaseURL != "" && cfg.CatalogFile != "" {
		return nil, fmt.Errorf("DATABASE_URL and CATALOG_FILE are mutually exclusive")
	}

	var err error
	cfg.DebounceWindow, err = getDuration("DEBOUNCE_WINDOW", 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if cfg.DebounceWindow <= 0 {
		return nil, fmt.Errorf("DEBOUNCE_WINDOW must be positive")
	}

	cfg.ActivityWindow, err = getDuration("ACTIVITY_WINDOW", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	if cfg.ActivityWindow <= 0 {
		return nil, fmt.Errorf("ACTIVITY_WINDOW must be positive")
	}

	cfg.MaxSocketClients, err = getInt("MAX_SOCKET_CLIENTS", 256)
	if err != nil {
		return nil, err
	}
	if cfg.MaxSocketClients <= 0 {
		return nil, fmt.Errorf("MAX_SOCKET_CLIENTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. \"200ms\"): %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
