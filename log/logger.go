// Package log holds the zap logger shared by the waPC host packages and the sinks
// that receive guest console output.
package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Logger returns the package logger.
// It uses a no-op logger until SetLogger is called.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the package logger. A nil logger restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Named returns a child of the package logger, or of l when it is not nil.
func Named(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = Logger()
	}
	return l.Named(name)
}
