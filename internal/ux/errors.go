package ux

import (
	"errors"
	"fmt"
	"strings"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
)

// ErrorWithSuggestion wraps an error with a recovery suggestion
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to uncoded errors whose message points at a
// known cause. Coded errors already carry their own suggestions.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *drifterrors.DriftError
	if errors.As(err, &coded) {
		return err
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "executable file not found") {
		if strings.Contains(errMsg, "python") {
			return NewErrorWithSuggestion(err,
				"Install Python 3 or point BETTY_DRIFT_PYTHON at an interpreter")
		}
		if strings.Contains(errMsg, "git") {
			return NewErrorWithSuggestion(err,
				"Install git; without it the report SHA and branch are \"unknown\"")
		}
	}

	if strings.Contains(errMsg, "no such file or directory") {
		if strings.Contains(errMsg, "drift_rules.yaml") {
			return NewErrorWithSuggestion(err,
				"Create 30_config/drift_rules.yaml or pass --rules with an existing file")
		}
		if strings.Contains(errMsg, "META.yaml") {
			return NewErrorWithSuggestion(err,
				"Create META.yaml in the project root, then run 'betty-drift meta'")
		}
	}

	if strings.Contains(errMsg, "permission denied") || strings.Contains(errMsg, "read-only file system") {
		return NewErrorWithSuggestion(err,
			"Check that the output directory is writable, or choose another with --out-dir")
	}

	if strings.Contains(errMsg, "metrics") {
		return NewErrorWithSuggestion(err,
			"Check the --metrics-file path; the scan itself completed")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
