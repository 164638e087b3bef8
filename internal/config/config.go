// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the HTTP API and the embedded warehouse.
type Config struct {
	ListenAddr    string // HTTP listen address (default ":8080")
	ExploresDir   string // directory of explore YAML schemas (default "explores")
	DuckDBPath    string // DuckDB database file, empty for in-memory
	HistoryDBPath string // SQLite query history file (default "prism_history.sqlite")
	LogLevel      string // log level: debug, info, warn, error (default "info")
	Env           string // environment: "development" (default) or "production"

	// Query limits
	DefaultRowLimit int // limit applied when a selection carries none (default 500)
	MaxRowLimit     int // hard cap on any query limit (default 5000)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables, applying
// defaults for anything unset.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		ExploresDir:   os.Getenv("EXPLORES_DIR"),
		DuckDBPath:    os.Getenv("DUCKDB_PATH"),
		HistoryDBPath: os.Getenv("HISTORY_DB_PATH"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
	}

	if v := os.Getenv("DEFAULT_ROW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("DEFAULT_ROW_LIMIT must be a positive integer, got %q", v)
		}
		cfg.DefaultRowLimit = n
	}
	if v := os.Getenv("MAX_ROW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_ROW_LIMIT must be a positive integer, got %q", v)
		}
		cfg.MaxRowLimit = n
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	cfg.applyDefaults()

	if cfg.DefaultRowLimit > cfg.MaxRowLimit {
		return nil, fmt.Errorf("DEFAULT_ROW_LIMIT (%d) exceeds MAX_ROW_LIMIT (%d)", cfg.DefaultRowLimit, cfg.MaxRowLimit)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.ExploresDir == "" {
		c.ExploresDir = "explores"
	}
	if c.HistoryDBPath == "" {
		c.HistoryDBPath = "prism_history.sqlite"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.DefaultRowLimit == 0 {
		c.DefaultRowLimit = 500
	}
	if c.MaxRowLimit == 0 {
		c.MaxRowLimit = 5000
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = 100
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 200
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
}

// LoadDotEnv reads KEY=VALUE pairs from a .env file into the process
// environment. Existing variables are never overwritten. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
