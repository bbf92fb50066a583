package stdnames

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with catalog-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a standard-name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogLoad logs a catalog load.
func (l *Logger) LogLoad(ctx context.Context, dir string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog load failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "catalog loaded",
			"dir", dir,
			"entries", count,
		)
	}
}

// LogCommit logs a unit-of-work commit.
func (l *Logger) LogCommit(ctx context.Context, staged, removed, violations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"staged", staged,
			"removed", removed,
			"violations", violations,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "commit completed",
			"staged", staged,
			"removed", removed,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, query string, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogSnapshot logs a snapshot build.
func (l *Logger) LogSnapshot(ctx context.Context, records int, aggregate string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot built",
			"records", records,
			"aggregate_hash", aggregate,
		)
	}
}
