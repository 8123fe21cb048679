// ABOUTME: Structured logger construction on top of zap
// ABOUTME: Maps level and format names to a configured *zap.Logger

package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a zap level.
// Anything else is info.
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

// New builds a logger writing to stderr. format is "json" or "console".
func New(level, format, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	if service != "" {
		log = log.With(zap.String("service", service))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" && format == "json" {
		log = log.With(zap.String("hostname", hostname))
	}
	return log, nil
}

// Install builds a logger and makes it the zap global. The returned function
// flushes and restores the previous global.
func Install(level, format, service string) (func(), error) {
	log, err := New(level, format, service)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(log)
	return func() {
		_ = log.Sync()
		restore()
	}, nil
}
