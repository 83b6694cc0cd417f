// Package logging provides structured logging configuration using log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level slog.Level
	// JSON enables JSON output format.
	JSON bool
	// Output is the writer to write logs to. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration used by the command line tools.
// LOG_LEVEL selects the level (DEBUG, INFO, WARN, ERROR; default INFO) and
// LOG_FORMAT=json switches to JSON output.
func DefaultConfig() Config {
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) Config {
	return Config{
		Level:  ParseLevel(getenv("LOG_LEVEL")),
		JSON:   strings.EqualFold(getenv("LOG_FORMAT"), "json"),
		Output: os.Stderr,
	}
}

// ParseLevel converts a string log level to slog.Level. Unknown values map to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the process logger and installs it as the slog default.
// Records go to stderr unless cfg.Output is set, so stdout carries only the
// totals table, the chart menu and user hints.
func Setup(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	handler := slog.Handler(slog.NewTextHandler(out, opts))
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithRun tags every record of a single invocation with a fresh run_id.
func WithRun(logger *slog.Logger) *slog.Logger {
	return logger.With("run_id", uuid.NewString())
}
