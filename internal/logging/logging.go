// Package logging constructs the daemon's slog.Logger. Everything in the
// process logs through one logger so the UI can tail a single stream; every
// record carries a "service" attribute to keep lines attributable when the
// observer process logs into the same file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/timearc/timearc/internal/config"
)

const serviceName = "timearc"

// New constructs a slog.Logger configured according to the provided settings.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	return slog.New(handler).With("service", serviceName), nil
}
