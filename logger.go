package gramsearch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with gramsearch-specific context.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithIndex adds the snapshot name to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, queryLen int, states int, matches uint64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query_len", queryLen,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query_len", queryLen,
			"states", states,
			"matches", matches,
			"duration", d,
		)
	}
}

// LogIndexLoad logs loading a snapshot.
func (l *Logger) LogIndexLoad(ctx context.Context, name string, size int64, rows uint64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index loaded",
			"name", name,
			"bytes", size,
			"rows", rows,
			"duration", d,
		)
	}
}

// LogBuild logs building an index from a PRG.
func (l *Logger) LogBuild(ctx context.Context, prgLen, sites int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"prg_len", prgLen,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index built",
			"prg_len", prgLen,
			"sites", sites,
			"duration", d,
		)
	}
}

// LogSnapshot logs writing a snapshot.
func (l *Logger) LogSnapshot(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"bytes", size,
		)
	}
}
