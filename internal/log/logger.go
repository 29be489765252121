package log

import (
	"context"
	"errors"
	"log/slog"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
)

// Logger is a slog logger with helpers for scan attributes
type Logger struct {
	slog *slog.Logger
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == FormatJSON {
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	} else {
		handler = slog.NewTextHandler(config.Output.Writer(), opts)
	}

	return &Logger{slog: slog.New(handler)}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Discard creates a logger that drops everything. Used by tests and library callers.
func Discard() *Logger {
	return New(DiscardConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// ForCheck tags entries with the detection level and check name
func (l *Logger) ForCheck(level int, check string) *Logger {
	return l.With("detection_level", level, "check", check)
}

// ForScript tags entries with a delegated validator script
func (l *Logger) ForScript(check, script string) *Logger {
	return l.With("check", check, "script", script)
}

// WithError adds error details to the logger. Coded errors contribute
// their code, suggestions and cause.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	var driftErr *drifterrors.DriftError
	if errors.As(err, &driftErr) {
		args := []any{
			"error", driftErr.Message,
			"error_code", string(driftErr.Code),
		}
		if len(driftErr.Suggestions) > 0 {
			args = append(args, "suggestions", driftErr.Suggestions)
		}
		if driftErr.Cause != nil {
			args = append(args, "cause", driftErr.Cause.Error())
		}
		return l.With(args...)
	}

	return l.With("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Enabled returns whether the logger is enabled for the given level
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.slog.Enabled(ctx, level.ToSlogLevel())
}
