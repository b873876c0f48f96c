package logging

import (
	"context"
	"sync/atomic"
)

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string ("debug", "info", "warn", "error", "fatal")
// to a Level. Unknown values fall back to InfoLevel.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel
	case "warn", "warning", "WARN":
		return WarnLevel
	case "error", "ERROR":
		return ErrorLevel
	case "fatal", "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// Fields represents structured logging fields
type Fields map[string]any

// contextKey is unexported so only this package can attach fields to a context
type contextKey struct{}

// ContextWithFields returns a context carrying fields that WithContext will
// pick up.
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, contextKey{}, fields)
}

func fieldsFromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return nil, false
	}
	fields, ok := ctx.Value(contextKey{}).(Fields)
	return fields, ok
}

// Logger defines the interface that the library expects for logging
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields
	WithFields(fields Fields) Logger

	// WithContext returns a logger that can extract fields from context
	WithContext(ctx context.Context) Logger

	// SetLevel sets the minimum log level
	SetLevel(level Level)
}

type loggerHolder struct {
	logger Logger
}

var globalLogger atomic.Pointer[loggerHolder]

func init() {
	globalLogger.Store(&loggerHolder{logger: NewDefaultLogger()})
}

func current() Logger {
	return globalLogger.Load().logger
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	globalLogger.Store(&loggerHolder{logger: logger})
}

// GetGlobalLogger returns the current global logger
func GetGlobalLogger() Logger {
	return current()
}

// Package-level logging functions that use the global logger
func Debug(msg string, fields ...Fields) {
	current().Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	current().Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	current().Warn(msg, fields...)
}

func Error(err error, msg string, fields ...Fields) {
	current().Error(err, msg, fields...)
}

func Fatal(err error, msg string, fields ...Fields) {
	current().Fatal(err, msg, fields...)
}

func WithFields(fields Fields) Logger {
	return current().WithFields(fields)
}

func WithContext(ctx context.Context) Logger {
	return current().WithContext(ctx)
}

func SetLevel(level Level) {
	current().SetLevel(level)
}

// NoOpLogger discards everything. Tests install it to keep output quiet.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
