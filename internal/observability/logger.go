// Package observability provides structured logging and metrics collection.
//
// Logger wraps log/slog with a persistent component field so every line
// names the subsystem that wrote it. MetricsCollector keeps in-memory
// request and latency statistics surfaced on the health endpoint.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with a persistent component context.
type Logger struct {
	inner     *slog.Logger
	component string
}

// NewLogger creates a structured JSON logger for a subsystem.
// Output defaults to os.Stderr if w is nil.
func NewLogger(component string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return &Logger{
		inner:     slog.New(handler),
		component: component,
	}
}

// NewLoggerWithHandler creates a logger with a custom slog handler.
func NewLoggerWithHandler(component string, h slog.Handler) *Logger {
	return &Logger{
		inner:     slog.New(h),
		component: component,
	}
}

// With returns a new Logger carrying an additional persistent field.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		inner:     l.inner.With(slog.Any(key, value)),
		component: l.component,
	}
}

// attrs prepends the component name to the arguments.
func (l *Logger) attrs(msg string, args []any) (string, []any) {
	return msg, append([]any{slog.String("component", l.component)}, args...)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Debug(msg, args...)
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Info(msg, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Warn(msg, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Error(msg, args...)
}

// Request logs a handled HTTP request with its outcome.
func (l *Logger) Request(requestID, method, path string, status int, args ...any) {
	allArgs := append([]any{
		slog.String("component", l.component),
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
	}, args...)
	l.inner.Info("request", allArgs...)
}

// Component returns the component name associated with this logger.
func (l *Logger) Component() string {
	return l.component
}
