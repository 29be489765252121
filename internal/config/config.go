// Package config resolves run settings from the environment.
//
// Precedence is CLI flags > environment > built-in defaults. A .env file in
// the working directory is loaded first; it never overrides variables that
// are already set.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
	"github.com/bettyprotocol/betty-drift/internal/log"
)

// Environment variable names
const (
	EnvRules  = "BETTY_DRIFT_RULES"
	EnvOutDir = "BETTY_DRIFT_OUT_DIR"
	EnvPython = "BETTY_DRIFT_PYTHON"
	EnvLevel  = "BETTY_DRIFT_LEVEL"

	// EnvLogFormat selects text (default) or json log lines on stderr
	EnvLogFormat = "BETTY_DRIFT_LOG_FORMAT"
)

// DefaultLevel is used when neither flag nor environment sets a level
const DefaultLevel = 1

// Config holds settings that may come from the environment
type Config struct {
	Rules  string
	OutDir string
	Python string
	Level  int

	// EnvOverrides records which settings came from the environment
	EnvOverrides map[string]bool
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		Level:        DefaultLevel,
		EnvOverrides: map[string]bool{},
	}
}

// LoadDotEnv loads path into the process environment when it exists.
// Variables already set are left untouched.
func LoadDotEnv(path string, logger *log.Logger) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("failed to load .env file", "file", path, "error", err)
		return err
	}
	logger.Debug("loaded .env file", "file", path)
	return nil
}

// FromEnv layers environment variables over the defaults
func FromEnv() (*Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(os.Getenv(EnvRules)); v != "" {
		cfg.Rules = v
		cfg.EnvOverrides[EnvRules] = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutDir)); v != "" {
		cfg.OutDir = v
		cfg.EnvOverrides[EnvOutDir] = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvPython)); v != "" {
		cfg.Python = v
		cfg.EnvOverrides[EnvPython] = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return nil, drifterrors.NewInvalidFlagError("level", v, "1, 2, 3").
				WithSuggestion("Check the " + EnvLevel + " environment variable")
		}
		cfg.Level = level
		cfg.EnvOverrides[EnvLevel] = true
	}
	return cfg, nil
}

// Load reads the .env file in the working directory, then the environment
func Load(logger *log.Logger) (*Config, error) {
	if logger == nil {
		logger = log.Discard()
	}
	// A broken .env is reported but does not stop the run
	_ = LoadDotEnv(".env", logger)
	return FromEnv()
}

// ParseLevel parses a detection level (1, 2 or 3)
func ParseLevel(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 3 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
