package telemetry

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// ZapLogger adapts a zap logger to the Temporal SDK logging interface so
// the worker, client and workflow code all log through the same sink.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps a zap logger for use as a Temporal SDK logger
func NewZapLogger(l *zap.Logger) *ZapLogger {
	// Skip one level so call sites point at workflow/activity code
	return &ZapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

var _ log.Logger = (*ZapLogger)(nil)

func (l *ZapLogger) Debug(msg string, keyvals ...interface{}) {
	l.sugar.Debugw(msg, keyvals...)
}

func (l *ZapLogger) Info(msg string, keyvals ...interface{}) {
	l.sugar.Infow(msg, keyvals...)
}

func (l *ZapLogger) Warn(msg string, keyvals ...interface{}) {
	l.sugar.Warnw(msg, keyvals...)
}

func (l *ZapLogger) Error(msg string, keyvals ...interface{}) {
	l.sugar.Errorw(msg, keyvals...)
}
