package log

import "sync/atomic"

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger sets the process-wide logger. The root command installs
// one per invocation from --verbose.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// DefaultLogger returns the process-wide logger, or a Default logger when
// none has been set.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := Default()
	defaultLogger.CompareAndSwap(nil, l)
	return defaultLogger.Load()
}
