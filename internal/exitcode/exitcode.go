package exitcode

import (
	"errors"
	"os"
	"strings"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates the scan completed, whatever it found
	Success = 0

	// DriftFound indicates CRITICAL findings in strict mode, or META.yaml drift
	DriftFound = 1

	// ConfigError indicates invalid usage or a repository that cannot be located
	ConfigError = 2

	// GeneralError indicates any other failure (e.g. a report could not be written)
	GeneralError = 3

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// DriftFoundError is returned by commands that completed but must exit non-zero
// because of what they found.
type DriftFoundError struct {
	Message string
}

func (e *DriftFoundError) Error() string {
	return e.Message
}

// NewDriftFound creates a DriftFoundError
func NewDriftFound(message string) error {
	return &DriftFoundError{Message: message}
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var found *DriftFoundError
	if errors.As(err, &found) {
		return DriftFound
	}

	var driftErr *drifterrors.DriftError
	if errors.As(err, &driftErr) {
		if driftErr.IsConfig() {
			return ConfigError
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// cobra usage errors
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return ConfigError
	}
	if strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "required flag") {
		return ConfigError
	}
	if strings.Contains(errMsg, "accepts at most") || strings.Contains(errMsg, "flag needs an argument") {
		return ConfigError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case DriftFound:
		return "Drift found (strict mode or META.yaml drift)"
	case ConfigError:
		return "Configuration error"
	case GeneralError:
		return "General error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
