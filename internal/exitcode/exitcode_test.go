package exitcode

import (
	"errors"
	"fmt"
	"testing"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"DriftFound", DriftFound, 1},
		{"ConfigError", ConfigError, 2},
		{"GeneralError", GeneralError, 3},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "strict mode critical findings",
			err:      NewDriftFound("STRICT MODE: 2 CRITICAL finding(s)"),
			expected: DriftFound,
		},
		{
			name:     "wrapped drift found",
			err:      fmt.Errorf("detect: %w", NewDriftFound("drift")),
			expected: DriftFound,
		},
		{
			name:     "repository not found",
			err:      drifterrors.NewRepoNotFoundError("/missing"),
			expected: ConfigError,
		},
		{
			name:     "invalid flag value",
			err:      drifterrors.NewInvalidFlagError("level", 9, "1, 2, 3"),
			expected: ConfigError,
		},
		{
			name:     "report write failure",
			err:      drifterrors.NewReportWriteError("/ro/report.md", errors.New("read-only")),
			expected: GeneralError,
		},
		{
			name:     "cobra unknown flag",
			err:      errors.New("unknown flag: --levle"),
			expected: ConfigError,
		},
		{
			name:     "cobra unknown command",
			err:      errors.New(`unknown command "scan" for "betty-drift"`),
			expected: ConfigError,
		},
		{
			name:     "cobra invalid argument",
			err:      errors.New(`invalid argument "x" for "--level" flag`),
			expected: ConfigError,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{Success, "Success"},
		{ConfigError, "Configuration error"},
		{Interrupted, "Interrupted"},
		{42, "Unknown error"},
	}

	for _, tt := range tests {
		if got := GetExitCodeDescription(tt.code); got != tt.want {
			t.Errorf("GetExitCodeDescription(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
