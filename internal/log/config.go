package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the minimum severity a logger emits
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ToSlogLevel converts l to the slog equivalent; unknown levels map to INFO
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name case-insensitively. Unknown names give
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format is the log line encoding
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat parses "json" case-insensitively; anything else is text
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Output is where log lines go
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer, stderr when unset
func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return os.Stderr
	}
	return o.writer
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStderr creates an Output that writes to stderr
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// Config holds configuration for the logger
type Config struct {
	Level     Level
	Format    Format
	Output    Output
	AddSource bool
}

// DefaultConfig returns the configuration for normal runs.
// Only errors reach stderr so that a scan is silent until its summary.
func DefaultConfig() Config {
	return Config{
		Level:  LevelError,
		Format: FormatText,
		Output: OutputStderr(),
	}
}

// VerboseConfig returns the configuration for --verbose runs:
// per-check progress and soft failures at DEBUG, text format on stderr.
func VerboseConfig() Config {
	return Config{
		Level:  LevelDebug,
		Format: FormatText,
		Output: OutputStderr(),
	}
}

// DiscardConfig returns a configuration that writes nowhere
func DiscardConfig() Config {
	return Config{
		Level:  LevelError,
		Format: FormatText,
		Output: NewOutput(io.Discard),
	}
}

// ForVerbosity picks VerboseConfig or DefaultConfig
func ForVerbosity(verbose bool) Config {
	if verbose {
		return VerboseConfig()
	}
	return DefaultConfig()
}

// WithFormat returns c with its format replaced
func (c Config) WithFormat(f Format) Config {
	c.Format = f
	return c
}
