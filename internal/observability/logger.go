package observability

import (
	"log/slog"
	"os"

	"github.com/floodwatch/glofas-trigger/internal/config"
)

// NewLogger builds the run's slog logger from the configured level and
// format. Unknown values fall back to info/json.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler).With(
		"country", cfg.CountryCode,
		"lead_time", cfg.LeadTimeLabel(),
	)
}
