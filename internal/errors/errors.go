package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeRepoNotFound    ErrorCode = "CONFIG-001"
	ErrCodeInvalidFlag     ErrorCode = "CONFIG-002"
	ErrCodeRulesUnreadable ErrorCode = "CONFIG-003"

	// Report errors (REPORT-001 to REPORT-099)
	ErrCodeReportWrite  ErrorCode = "REPORT-001"
	ErrCodeMetricsWrite ErrorCode = "REPORT-002"

	// META.yaml errors (META-001 to META-099)
	ErrCodeMetaUnreadable ErrorCode = "META-001"
)

// DriftError represents an error with code and recovery suggestions
type DriftError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *DriftError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *DriftError) Unwrap() error {
	return e.Cause
}

// IsConfig reports whether the error belongs to the configuration class.
func (e *DriftError) IsConfig() bool {
	return strings.HasPrefix(string(e.Code), "CONFIG-")
}

// New creates a new DriftError
func New(code ErrorCode, message string) *DriftError {
	return &DriftError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new DriftError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *DriftError {
	return &DriftError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *DriftError) WithSuggestion(suggestion string) *DriftError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *DriftError) WithSuggestions(suggestions ...string) *DriftError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors

// NewRepoNotFoundError creates a repository-not-found error
func NewRepoNotFoundError(path string) *DriftError {
	return New(ErrCodeRepoNotFound, fmt.Sprintf("repository not found: %s", path)).
		WithSuggestion("Check the --repo path").
		WithSuggestion("Run from inside the repository to use the current directory")
}

// NewInvalidFlagError creates an invalid flag value error
func NewInvalidFlagError(flag string, value any, valid string) *DriftError {
	return New(ErrCodeInvalidFlag, fmt.Sprintf("invalid value for --%s: %v", flag, value)).
		WithSuggestion(fmt.Sprintf("Valid values: %s", valid))
}

// NewRulesUnreadableError creates an error for an explicit rules file that cannot be used
func NewRulesUnreadableError(path string, cause error) *DriftError {
	return Wrap(ErrCodeRulesUnreadable, fmt.Sprintf("rules file could not be loaded: %s", path), cause).
		WithSuggestion("Check the YAML syntax of the rules file").
		WithSuggestion("The top level must be a mapping (canonical_scope, excludes, ...)")
}

// NewReportWriteError creates a report write error
func NewReportWriteError(path string, cause error) *DriftError {
	return Wrap(ErrCodeReportWrite, fmt.Sprintf("failed to write report: %s", path), cause).
		WithSuggestion("Check that the output directory is writable").
		WithSuggestion("Use --out-dir to choose another location")
}

// NewMetaUnreadableError creates an error for a META.yaml that cannot be loaded
func NewMetaUnreadableError(path string, cause error) *DriftError {
	return Wrap(ErrCodeMetaUnreadable, fmt.Sprintf("META.yaml could not be loaded: %s", path), cause).
		WithSuggestion("Create META.yaml with project metadata").
		WithSuggestion("Validate the YAML syntax")
}
