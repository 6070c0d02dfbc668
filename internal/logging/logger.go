// Package logging provides structured logging for sitekit built on log/slog.
//
// Loggers are passed explicitly rather than held in package globals so the
// engine can be exercised in tests with a silent logger. Fields are variadic
// key-value pairs; odd trailing values are dropped.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch name {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is the structured logging interface used throughout sitekit.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// Options configures a logger.
type Options struct {
	Level     Level
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultOptions returns the default logger options.
func DefaultOptions() *Options {
	return &Options{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// SiteLogger implements Logger on top of slog.
type SiteLogger struct {
	handler   slog.Handler
	level     Level
	component string
	fields    []interface{}
}

// NewLogger creates a structured logger from the given options.
func NewLogger(opts *Options) *SiteLogger {
	if opts == nil {
		opts = DefaultOptions()
	}

	hopts := &slog.HandlerOptions{
		Level:     slogLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(opts.Output, hopts)
	} else {
		handler = slog.NewTextHandler(opts.Output, hopts)
	}

	return &SiteLogger{
		handler:   handler,
		level:     opts.Level,
		component: opts.Component,
	}
}

// NewTestLogger returns a logger that discards all output. Intended for tests.
func NewTestLogger() *SiteLogger {
	return NewLogger(&Options{Level: LevelError, Output: io.Discard})
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message.
func (l *SiteLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelDebug {
		return
	}
	l.log(ctx, slog.LevelDebug, nil, msg, fields...)
}

// Info logs an informational message.
func (l *SiteLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.log(ctx, slog.LevelInfo, nil, msg, fields...)
}

// Warn logs a warning with an optional cause.
func (l *SiteLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l.level > LevelWarn {
		return
	}
	l.log(ctx, slog.LevelWarn, err, msg, fields...)
}

// Error logs an error with its cause.
func (l *SiteLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelError, err, msg, fields...)
}

// With returns a logger that carries the given fields on every record.
func (l *SiteLogger) With(fields ...interface{}) Logger {
	combined := make([]interface{}, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)

	return &SiteLogger{
		handler:   l.handler,
		level:     l.level,
		component: l.component,
		fields:    combined,
	}
}

// WithComponent returns a logger scoped to a named component.
func (l *SiteLogger) WithComponent(component string) Logger {
	return &SiteLogger{
		handler:   l.handler,
		level:     l.level,
		component: component,
		fields:    l.fields,
	}
}

func (l *SiteLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields ...interface{}) {
	attrs := make([]slog.Attr, 0, len(l.fields)/2+len(fields)/2+2)

	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	attrs = appendPairs(attrs, l.fields)
	attrs = appendPairs(attrs, fields)

	record := slog.NewRecord(time.Now(), level, msg, 0)
	record.AddAttrs(attrs...)

	l.handler.Handle(ctx, record)
}

func appendPairs(attrs []slog.Attr, fields []interface{}) []slog.Attr {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, fields[i+1]))
	}
	return attrs
}

// Timed tracks the duration of a named operation.
type Timed struct {
	Logger
	start     time.Time
	operation string
}

// StartOperation begins duration tracking for an operation.
func StartOperation(l Logger, operation string) *Timed {
	return &Timed{
		Logger:    l.With("operation", operation),
		start:     time.Now(),
		operation: operation,
	}
}

// End logs the elapsed duration for the operation.
func (t *Timed) End(ctx context.Context) {
	t.Info(ctx, "operation completed", "duration_ms", time.Since(t.start).Milliseconds())
}
