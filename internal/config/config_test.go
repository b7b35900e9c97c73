package config

import (
	"testing"
	"time"

	"log/slog"
)

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %q, got %q", defaultPort, cfg.Server.Port)
	}
	if cfg.Pipeline.MaxConcurrent != defaultMaxConcurrent {
		t.Errorf("expected default max concurrent %d, got %d", defaultMaxConcurrent, cfg.Pipeline.MaxConcurrent)
	}
	if cfg.Pipeline.DelayBetweenRequests != defaultRequestDelay {
		t.Errorf("expected default request delay %v, got %v", defaultRequestDelay, cfg.Pipeline.DelayBetweenRequests)
	}
	if cfg.Pipeline.CacheTTL != defaultCacheTTL {
		t.Errorf("expected default cache TTL %v, got %v", defaultCacheTTL, cfg.Pipeline.CacheTTL)
	}
	if cfg.Pipeline.RequestTimeout != defaultRequestTimeout {
		t.Errorf("expected default request timeout %v, got %v", defaultRequestTimeout, cfg.Pipeline.RequestTimeout)
	}
	if cfg.Logging.Level != slog.LevelInfo {
		t.Errorf("expected default log level %v, got %v", slog.LevelInfo, cfg.Logging.Level)
	}
	if cfg.Logging.Format != defaultLogFormat {
		t.Errorf("expected default log format %q, got %q", defaultLogFormat, cfg.Logging.Format)
	}
	if cfg.Database.Path == "" {
		t.Error("expected a non-empty default database path")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("TIMEARC_PORT", "9090")
	t.Setenv("TIMEARC_DB_PATH", "/tmp/timearc-test.db")
	t.Setenv("TIMEARC_MAX_CONCURRENT", "4")
	t.Setenv("TIMEARC_REQUEST_DELAY_MS", "250")
	t.Setenv("TIMEARC_CACHE_TTL_SECONDS", "120")
	t.Setenv("TIMEARC_AI_TIMEOUT_SECONDS", "30")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected overridden port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/timearc-test.db" {
		t.Errorf("expected overridden db path, got %q", cfg.Database.Path)
	}
	if cfg.Pipeline.MaxConcurrent != 4 {
		t.Errorf("expected max concurrent 4, got %d", cfg.Pipeline.MaxConcurrent)
	}
	if cfg.Pipeline.DelayBetweenRequests != 250*time.Millisecond {
		t.Errorf("expected request delay 250ms, got %v", cfg.Pipeline.DelayBetweenRequests)
	}
	if cfg.Pipeline.CacheTTL != 2*time.Minute {
		t.Errorf("expected cache TTL 2m, got %v", cfg.Pipeline.CacheTTL)
	}
	if cfg.Pipeline.RequestTimeout != 30*time.Second {
		t.Errorf("expected request timeout 30s, got %v", cfg.Pipeline.RequestTimeout)
	}
	if cfg.Logging.Level != slog.LevelDebug {
		t.Errorf("expected log level debug, got %v", cfg.Logging.Level)
	}
}

func TestLoadWithInvalidValues(t *testing.T) {
	tests := map[string]string{
		"TIMEARC_MAX_CONCURRENT":           "0",
		"TIMEARC_REQUEST_DELAY_MS":         "-10",
		"TIMEARC_CACHE_TTL_SECONDS":        "abc",
		"TIMEARC_AI_TIMEOUT_SECONDS":       "3.5",
		"TIMEARC_SHUTDOWN_TIMEOUT_SECONDS": "-1",
		"LOG_LEVEL":                        "verbose",
		"LOG_FORMAT":                       "xml",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error when %s=%q", key, value)
			}
		})
	}
}

func TestParseLogLevelAliases(t *testing.T) {
	tests := map[string]slog.Level{
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
	}

	for input, expected := range tests {
		level, err := parseLogLevel(input)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) returned error: %v", input, err)
		}

		if level != expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, level, expected)
		}
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"TIMEARC_PORT",
		"TIMEARC_DB_PATH",
		"TIMEARC_JWT_SECRET",
		"TIMEARC_PASSWORD",
		"TIMEARC_MAX_CONCURRENT",
		"TIMEARC_REQUEST_DELAY_MS",
		"TIMEARC_CACHE_TTL_SECONDS",
		"TIMEARC_AI_TIMEOUT_SECONDS",
		"TIMEARC_SHUTDOWN_TIMEOUT_SECONDS",
		"LOG_LEVEL",
		"LOG_FORMAT",
	}

	for _, key := range keys {
		t.Setenv(key, "")
	}
}
