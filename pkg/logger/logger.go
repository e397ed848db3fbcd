package logger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu           sync.RWMutex
	globalLogger *zap.Logger
)

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the global logger
func Init(level string, environment string) error {
	zapLevel := ParseLevel(level)

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if environment == "development" {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	Set(logger)
	return nil
}

// Set replaces the global logger and returns a function restoring the previous one.
func Set(l *zap.Logger) func() {
	mu.Lock()
	defer mu.Unlock()

	prev := globalLogger
	globalLogger = l
	return func() { Set(prev) }
}

// Get returns the global logger
func Get() *zap.Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()

	if l == nil {
		// Fallback to a basic logger if not initialized
		l, _ = zap.NewDevelopmentConfig().Build()
		if l == nil {
			return zap.NewNop()
		}
	}
	return l
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()

	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Named returns a child logger for a component.
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

// WithSymbol returns a logger tagged with a symbol.
func WithSymbol(symbol string) *zap.Logger {
	return Get().With(zap.String("symbol", symbol))
}

func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) { Get().Fatal(msg, fields...) }

// Helper functions for common field types

func String(key, value string) zap.Field                 { return zap.String(key, value) }
func Strings(key string, value []string) zap.Field       { return zap.Strings(key, value) }
func Int(key string, value int) zap.Field                { return zap.Int(key, value) }
func Int64(key string, value int64) zap.Field            { return zap.Int64(key, value) }
func Float64(key string, value float64) zap.Field        { return zap.Float64(key, value) }
func Bool(key string, value bool) zap.Field              { return zap.Bool(key, value) }
func Duration(key string, value time.Duration) zap.Field { return zap.Duration(key, value) }
func Time(key string, value time.Time) zap.Field         { return zap.Time(key, value) }
func ErrorField(err error) zap.Field                     { return zap.Error(err) }
func Any(key string, value interface{}) zap.Field        { return zap.Any(key, value) }

// Values flattens indicator outputs into a single structured field.
func Values(values map[string]float64) zap.Field {
	return zap.Any("indicators", values)
}
