package geosearch

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with geosearch-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithField adds a field name to the logger.
func (l *Logger) WithField(field string) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", field),
	}
}

// LogAdd logs a single document insert.
func (l *Logger) LogAdd(ctx context.Context, id uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"id", id,
		)
	}
}

// LogBatchAdd logs a batch insert.
func (l *Logger) LogBatchAdd(ctx context.Context, count int, err error) {
	if err != nil {
		l.WarnContext(ctx, "batch add failed",
			"total", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "batch add completed",
			"count", count,
		)
	}
}

// LogCommit logs a committed snapshot.
func (l *Logger) LogCommit(ctx context.Context, docs uint32, fields int) {
	l.InfoContext(ctx, "snapshot committed",
		"docs", docs,
		"fields", fields,
	)
}

// LogSearch logs a filter execution.
func (l *Logger) LogSearch(ctx context.Context, field, filter string, hits int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"field", field,
			"filter", filter,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"field", field,
			"filter", filter,
			"hits", hits,
		)
	}
}
