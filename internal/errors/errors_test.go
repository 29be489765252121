package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeRepoNotFound, "test error message")

	if err.Code != ErrCodeRepoNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeRepoNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeReportWrite, "failed to write report", cause)

	if err.Code != ErrCodeReportWrite {
		t.Errorf("expected code %s, got %s", ErrCodeReportWrite, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *DriftError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeInvalidFlag, "invalid level"),
			wantCode: "CONFIG-002",
			wantMsg:  "invalid level",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeReportWrite, "write failed", fmt.Errorf("permission denied")),
			wantCode: "REPORT-001",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeRepoNotFound, "repo not found").
		WithSuggestion("Check the file path")

	if len(err.Suggestions) != 1 {
		t.Errorf("expected 1 suggestion, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions section")
	}

	if !strings.Contains(errStr, "Check the file path") {
		t.Errorf("error string should contain suggestion text")
	}
}

func TestWithSuggestions(t *testing.T) {
	err := New(ErrCodeInvalidFlag, "bad flag").
		WithSuggestions("Suggestion 1", "Suggestion 2", "Suggestion 3")

	if len(err.Suggestions) != 3 {
		t.Errorf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	for _, suggestion := range err.Suggestions {
		if !strings.Contains(errStr, suggestion) {
			t.Errorf("error string should contain suggestion: %s", suggestion)
		}
	}
}

func TestIsConfig(t *testing.T) {
	tests := []struct {
		name string
		err  *DriftError
		want bool
	}{
		{"repo not found", NewRepoNotFoundError("/nope"), true},
		{"invalid flag", NewInvalidFlagError("level", 7, "1, 2, 3"), true},
		{"rules unreadable", NewRulesUnreadableError("rules.yaml", fmt.Errorf("bad yaml")), true},
		{"report write", NewReportWriteError("out.md", fmt.Errorf("denied")), false},
		{"meta", NewMetaUnreadableError("META.yaml", fmt.Errorf("missing")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsConfig(); got != tt.want {
				t.Errorf("IsConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRepoNotFoundError(t *testing.T) {
	err := NewRepoNotFoundError("/path/to/repo")

	if err.Code != ErrCodeRepoNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeRepoNotFound, err.Code)
	}

	if !strings.Contains(err.Message, "/path/to/repo") {
		t.Errorf("error message should contain repo path")
	}

	if len(err.Suggestions) < 2 {
		t.Errorf("expected at least 2 suggestions, got %d", len(err.Suggestions))
	}
}

func TestNewInvalidFlagError(t *testing.T) {
	err := NewInvalidFlagError("format", "xml", "md, json, both, sarif, all")

	if !strings.Contains(err.Message, "--format") || !strings.Contains(err.Message, "xml") {
		t.Errorf("unexpected message: %s", err.Message)
	}

	if !strings.Contains(err.Error(), "md, json, both") {
		t.Errorf("error string should list valid values")
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("running detect: %w", NewRepoNotFoundError("/tmp/missing"))

	var driftErr *DriftError
	if !errors.As(wrapped, &driftErr) {
		t.Fatal("errors.As should find the DriftError")
	}

	if driftErr.Code != ErrCodeRepoNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeRepoNotFound, driftErr.Code)
	}
}
