package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config carries the log settings read from the environment.
type Config struct {
	// Level is the textual threshold: debug, info, warn or error.
	Level string
	// Format selects the handler encoding, json or text.
	Format string
	// AddSource includes file:line attribution on every record.
	AddSource bool
}

// ParseLevel maps a textual level onto slog's scale. Unrecognized input
// falls back to info rather than failing startup.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	case "trace":
		return slog.LevelDebug - 2
	default:
		return slog.LevelInfo
	}
}

// New constructs a slog.Logger writing to w with the given settings. A nil
// writer falls back to stdout.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	default:
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
}
