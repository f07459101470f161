package core

import "go.uber.org/zap"

// Logger is the structured logging surface the core packages write to.
// Both *zap.Logger and the gofulmen CLI/server loggers satisfy it.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
