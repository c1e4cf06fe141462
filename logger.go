package passlib

import "go.uber.org/zap"

// Logger is the structured-logging interface [Context] depends on.
// Implementations must never receive a plaintext secret or a derived
// checksum in their fields.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

// nopLogger discards everything; it is the default for a Context built
// without [WithLogger].
type nopLogger struct{}

func (nopLogger) Debugw(string, ...any) {}
func (nopLogger) Infow(string, ...any)  {}
func (nopLogger) Warnw(string, ...any)  {}

// zapLogger adapts a *zap.SugaredLogger to [Logger], grounding the
// library's logging on go.uber.org/zap the way pkg/logger does for the
// digital-square service: structured, leveled, JSON in production.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps l as a [Logger]. A nil l is treated as a no-op.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Debugw(msg string, kv ...any) { z.sugar.Debugw(msg, kv...) }
func (z *zapLogger) Infow(msg string, kv ...any)  { z.sugar.Infow(msg, kv...) }
func (z *zapLogger) Warnw(msg string, kv ...any)  { z.sugar.Warnw(msg, kv...) }
