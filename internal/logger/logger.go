// Package logger configures the process-wide slog logger. Diagnostics go to
// stderr so that stdout carries only the rendered concordance.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default logger writing to stderr
func Setup(level string, format string) {
	SetupWriter(os.Stderr, level, format)
}

// SetupWriter installs the default logger writing to w
func SetupWriter(w io.Writer, level string, format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithComponent returns the default logger tagged with a component name
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
