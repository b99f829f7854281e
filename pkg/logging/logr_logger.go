package logging

import (
	"errors"

	"github.com/go-logr/logr"
)

// LogrLogger adapts a logr.Logger to Logger. logr has no warn
// level, so Warn is logged at Info with a "severity" key, and Debug
// maps to V(1).
type LogrLogger struct {
	logger logr.Logger
}

// NewLogrLogger wraps logger.
func NewLogrLogger(logger logr.Logger) *LogrLogger {
	return &LogrLogger{logger: logger}
}

func logrKeysAndValues(fields []Field) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

// Info logs an informational message.
func (l *LogrLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, logrKeysAndValues(fields)...)
}

// Warn logs a warning message.
func (l *LogrLogger) Warn(msg string, fields ...Field) {
	kv := append([]any{"severity", "warn"}, logrKeysAndValues(fields)...)
	l.logger.Info(msg, kv...)
}

// Error logs an error message. An "error" field, as produced by
// ErrorField, becomes the logr error argument.
func (l *LogrLogger) Error(msg string, fields ...Field) {
	var err error
	rest := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "error" && err == nil {
			if s, ok := f.Value.(string); ok {
				err = errors.New(s)
				continue
			}
		}
		rest = append(rest, f)
	}
	l.logger.Error(err, msg, logrKeysAndValues(rest)...)
}

// Debug logs a debug message at verbosity 1.
func (l *LogrLogger) Debug(msg string, fields ...Field) {
	l.logger.V(1).Info(msg, logrKeysAndValues(fields)...)
}

// WithFields returns a LogrLogger built with logr's WithValues.
func (l *LogrLogger) WithFields(fields ...Field) Logger {
	return &LogrLogger{
		logger: l.logger.WithValues(logrKeysAndValues(fields)...),
	}
}

// Close is a no-op; logr sinks own their lifecycle.
func (l *LogrLogger) Close() error { return nil }
