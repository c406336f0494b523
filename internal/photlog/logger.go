// Public domain.

// Package photlog wraps slog.Logger with field names used by sdssphot.
package photlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing text, or JSON if json is true, to w.
func New(w io.Writer, level slog.Level, json bool) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{slog.New(h)}
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, slog.LevelError+1, false)
}

// ParseLevel accepts debug, info, warn, or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// WithRun adds a run id field.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{l.Logger.With("run", id)}
}

// WithSource adds an input source field.
func (l *Logger) WithSource(src string) *Logger {
	return &Logger{l.Logger.With("source", src)}
}

// LogRead logs reading of the input table.
func (l *Logger) LogRead(ctx context.Context, rows, cols int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed", "error", err)
		return
	}
	l.InfoContext(ctx, "table read", "rows", rows, "columns", cols)
}

// LogChunk logs one processed chunk.
func (l *Logger) LogChunk(ctx context.Context, lo, hi int) {
	l.DebugContext(ctx, "chunk processed", "first", lo, "last", hi-1)
}

// LogSelection logs the size of a target class.
func (l *Logger) LogSelection(ctx context.Context, class string, selected, total int) {
	l.InfoContext(ctx, "targets selected",
		"class", class,
		"selected", selected,
		"total", total,
	)
}

// LogCheck logs agreement of a selection with catalog target flags.
func (l *Logger) LogCheck(ctx context.Context, class string, tp, fn, fp, tn int, mcc float64) {
	l.InfoContext(ctx, "selection check",
		"class", class,
		"tp", tp, "fn", fn, "fp", fp, "tn", tn,
		"mcc", fmt.Sprintf("%.2f", mcc),
	)
}
