// Package logging provides slog construction helpers shared by the engine
// components.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New constructs a text logger on stderr at the given level. Unknown level
// strings fall back to info.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// NewNop returns a logger that discards everything. Components accept a nil
// logger and substitute this, so tests stay quiet by default.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithComponent tags a child logger with the component name.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return NewNop().With("component", name)
	}
	return logger.With("component", name)
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
