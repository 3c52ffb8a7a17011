package streamstate

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with streamstate-specific context.
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

// WithOperator adds an operator ID field to the logger (useful for tagging
// every log line of one stream partition's state).
func (l *Logger) WithOperator(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("operator_id", id),
	}
}

// WithCount adds a row count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFlush logs a checkpoint flush.
func (l *Logger) LogFlush(ctx context.Context, deltas int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"deltas", deltas,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"deltas", deltas,
			"duration", duration,
		)
	}
}

// LogReconcile logs a cache reconciliation triggered by both caches
// draining while rows remain in storage.
func (l *Logger) LogReconcile(ctx context.Context, rows int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reconciliation failed",
			"rows", rows,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "reconciliation completed",
			"rows", rows,
			"duration", duration,
		)
	}
}

// LogRefill logs a startup/post-flush cache refill.
func (l *Logger) LogRefill(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cache refill failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cache refill completed",
			"rows", rows,
		)
	}
}
