// Package observability configures process-wide logging for the CLI. The
// library itself never touches global state; it takes an injected logger.
package observability

import (
	"fmt"
	"log/slog"
	"os"
)

// Instrument installs a process-wide slog handler with the given level and
// format ("text" or "json"). Called once at CLI startup, before any client
// is constructed.
func Instrument(level slog.Level, format string) error {
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, options)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, options)
	default:
		return fmt.Errorf("unsupported log format: %q", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// ParseLevel converts a level name (debug|info|warn|error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q: %w", name, err)
	}
	return level, nil
}
