package logging

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger is replaced with
// zap.NewNop.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// NewZapProduction builds a ZapLogger from zap's production
// preset at the given level.
func NewZapProduction(level LogLevel) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zapLevel(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(logger), nil
}

func zapLevel(level LogLevel) zap.AtomicLevel {
	switch level {
	case LevelDebug:
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case LevelWarn:
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case LevelError:
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

// Info logs an informational message.
func (z *ZapLogger) Info(msg string, fields ...Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

// Warn logs a warning message.
func (z *ZapLogger) Warn(msg string, fields ...Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

// Error logs an error message.
func (z *ZapLogger) Error(msg string, fields ...Field) {
	z.logger.Error(msg, zapFields(fields)...)
}

// Debug logs a debug message.
func (z *ZapLogger) Debug(msg string, fields ...Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

// WithFields returns a ZapLogger built with zap's With.
func (z *ZapLogger) WithFields(fields ...Field) Logger {
	return &ZapLogger{logger: z.logger.With(zapFields(fields)...)}
}

// Close syncs the underlying zap logger. Sync errors on
// terminals are common and ignored.
func (z *ZapLogger) Close() error {
	_ = z.logger.Sync()
	return nil
}
