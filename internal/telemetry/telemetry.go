// Package telemetry wires a *zap.Logger into the engine's entry points.
// There is no package-level singleton: every options struct that accepts
// a logger falls back to a no-op logger when none is given, per spec §9
// "Global mutable state → explicit context".
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production zap.Logger at the given level ("debug",
// "info", "warn", "error"). An unrecognized level falls back to "info".
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Nop returns the logger used whenever a caller leaves its options
// struct's Logger field unset.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Or returns logger if non-nil, otherwise a no-op logger. Entry points
// call this once at construction instead of nil-checking on every log
// call.
func Or(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
