// Package logging provides the structured, leveled logger every analyzer
// and session component in scoreform accepts, so callers can route
// detector and alignment diagnostics into their own observability stack
// without the core importing it directly.
package logging

import (
	"context"
)

// ANSI color codes for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBold   = "\033[1m"
)

// Level represents a log severity.
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

// Fields is a set of structured logging key/value pairs.
type Fields map[string]any

// ContextWithFields attaches fields to ctx so a WithContext logger can pick
// them up.
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, fieldsContextKey{}, fields)
}

// Logger is the interface every scoreform component logs through.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields merged into every call.
	WithFields(fields Fields) Logger

	// WithContext returns a logger that extracts fields from a context.
	WithContext(ctx context.Context) Logger

	SetLevel(level Level)
}

var globalLogger Logger = NewDefaultLogger()

// SetGlobalLogger sets the package-level logger used by Debug/Info/... .
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		globalLogger = &NoOpLogger{}
	} else {
		globalLogger = logger
	}
}

// GetGlobalLogger returns the current global logger.
func GetGlobalLogger() Logger {
	return globalLogger
}

func Debug(msg string, fields ...Fields)            { globalLogger.Debug(msg, fields...) }
func Info(msg string, fields ...Fields)              { globalLogger.Info(msg, fields...) }
func Warn(msg string, fields ...Fields)              { globalLogger.Warn(msg, fields...) }
func Error(err error, msg string, fields ...Fields)  { globalLogger.Error(err, msg, fields...) }
func Fatal(err error, msg string, fields ...Fields)  { globalLogger.Fatal(err, msg, fields...) }

func WithFields(fields Fields) Logger        { return globalLogger.WithFields(fields) }
func WithContext(ctx context.Context) Logger { return globalLogger.WithContext(ctx) }
func SetLevel(level Level)                   { globalLogger.SetLevel(level) }

// DisableColors globally disables color output for the default logger.
func DisableColors() {
	if d, ok := globalLogger.(*DefaultLogger); ok {
		d.useColors = false
	}
}

// EnableColors globally enables color output for the default logger.
func EnableColors() {
	if d, ok := globalLogger.(*DefaultLogger); ok {
		d.useColors = true
	}
}
