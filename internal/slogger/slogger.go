// Package slogger provides structured logging for the mpcatalog CLI using
// Go's slog with charmbracelet/log as the handler for pleasant terminal output.
package slogger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type contextKey string

const loggerKey contextKey = "logger"

// Category classifies a log record by the kind of activity that produced it.
type Category string

const (
	// CategoryExternal marks calls to the remote catalog repository.
	CategoryExternal Category = "external"
	// CategoryResource marks local resource activity (inventory, keychain).
	CategoryResource Category = "resource"
	// CategoryUI marks user-facing notices and interactions.
	CategoryUI Category = "ui"
)

// Attr returns the category as a log attribute.
func (c Category) Attr() slog.Attr {
	return slog.String("category", string(c))
}

// Config holds logger configuration.
type Config struct {
	// Verbosity controls log level:
	// 0 (default) -> Error only
	// 1 (-v)      -> Info level
	// 2+ (-vv)    -> Debug level
	Verbosity int

	// Output is the writer for log output. Defaults to os.Stderr.
	Output io.Writer
}

// New creates a new slog.Logger with charmbracelet/log as the handler.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var level charmlog.Level
	switch {
	case cfg.Verbosity >= 2:
		level = charmlog.DebugLevel
	case cfg.Verbosity == 1:
		level = charmlog.InfoLevel
	default:
		level = charmlog.ErrorLevel
	}

	handler := charmlog.NewWithOptions(output, charmlog.Options{
		Level:           level,
		Prefix:          "mpcatalog",
		ReportTimestamp: cfg.Verbosity >= 2,
	})

	return slog.New(handler)
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context.
// Returns a discarding logger if none is set (never returns nil).
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// L is a convenience alias for FromContext.
func L(ctx context.Context) *slog.Logger {
	return FromContext(ctx)
}

// For returns the context logger tagged with the given category.
func For(ctx context.Context, c Category) *slog.Logger {
	return FromContext(ctx).With(c.Attr())
}
