package lif

import "go.uber.org/zap"

// logger receives diagnostics about degraded blocks and skipped images.
// The default discards everything.
var logger = zap.NewNop()

// SetLogger replaces the package logger. Passing nil restores the no-op
// logger. Set it before opening files; the logger is not synchronized.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the current package logger.
func Logger() *zap.Logger {
	return logger
}
