package reactor

import "go.uber.org/zap"

// Logger is the structured-logging indirection threaded through
// HandleEvents, connectable lifecycle points, and the schedulers
// subpackage's Goroutine scheduler. It is satisfied directly by *zap.Logger; NopLogger() gives a
// silent default so callers never need a nil check.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

// NopLogger returns a Logger that discards everything, matching the
// zero-value-friendly default the rest of the package falls back to.
func NopLogger() Logger { return zap.NewNop() }

var _ Logger = (*zap.Logger)(nil)
