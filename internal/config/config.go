package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
// Settings the UI can change at runtime (AI enablement, provider selection)
// live in the database settings table instead.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server runtime parameters for the local UI API.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig locates the local SQLite database file.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds local API authentication parameters.
type AuthConfig struct {
	JWTSecret     string
	AdminPassword string
	TokenDuration time.Duration
}

// PipelineConfig holds categorization pipeline knobs. These are policy
// defaults, not structural constraints.
type PipelineConfig struct {
	MaxConcurrent        int
	DelayBetweenRequests time.Duration
	CacheTTL             time.Duration
	RequestTimeout       time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

const (
	defaultPort            = "8175"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultMaxConcurrent  = 2
	defaultRequestDelay   = 500 * time.Millisecond
	defaultCacheTTL       = 5 * time.Minute
	defaultRequestTimeout = 60 * time.Second

	defaultLogFormat = "json"
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:            getEnv("TIMEARC_PORT", defaultPort),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Path: getEnv("TIMEARC_DB_PATH", defaultDBPath()),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("TIMEARC_JWT_SECRET", "change-this-secret"),
			AdminPassword: getEnv("TIMEARC_PASSWORD", "timearc"),
			TokenDuration: 24 * time.Hour,
		},
		Pipeline: PipelineConfig{
			MaxConcurrent:        defaultMaxConcurrent,
			DelayBetweenRequests: defaultRequestDelay,
			CacheTTL:             defaultCacheTTL,
			RequestTimeout:       defaultRequestTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
	}

	if v := os.Getenv("TIMEARC_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid TIMEARC_MAX_CONCURRENT: must be a positive integer")
		}
		cfg.Pipeline.MaxConcurrent = n
	}

	if v := os.Getenv("TIMEARC_REQUEST_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return Config{}, fmt.Errorf("invalid TIMEARC_REQUEST_DELAY_MS: must be a non-negative integer")
		}
		cfg.Pipeline.DelayBetweenRequests = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("TIMEARC_CACHE_TTL_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIMEARC_CACHE_TTL_SECONDS: %w", err)
		}
		cfg.Pipeline.CacheTTL = d
	}

	if v := os.Getenv("TIMEARC_AI_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIMEARC_AI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Pipeline.RequestTimeout = d
	}

	if v := os.Getenv("TIMEARC_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIMEARC_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timearc.db"
	}
	return filepath.Join(home, ".timearc", "timearc.db")
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
