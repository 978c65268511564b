package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"Helpdesk/internal/config"
)

const service = "helpdesk"

// New builds the process logger on stderr.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter builds a logger writing to w. Format "json" selects the JSON
// handler; anything else is logfmt-style text.
func NewWriter(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", service)
}

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
