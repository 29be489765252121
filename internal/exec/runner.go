package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// Runner executes subprocess steps. Implementations never panic and report
// every failure through Result.
type Runner interface {
	Run(ctx context.Context, step Step) *Result
}

// LocalRunner runs steps on the host with os/exec
type LocalRunner struct{}

// NewLocalRunner creates a LocalRunner
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes the step, bounded by its timeout
func (r *LocalRunner) Run(ctx context.Context, step Step) *Result {
	if len(step.Cmd) == 0 {
		return &Result{
			ExitCode: -1,
			Outcome:  OutcomeSpawn,
			Error:    errors.New("empty command"),
		}
	}

	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, step.Cmd[0], step.Cmd[1:]...)
	cmd.Dir = step.Workdir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   normalizeOutput(stdout.Bytes()),
		Stderr:   normalizeOutput(stderr.Bytes()),
		Duration: time.Since(start),
		Outcome:  OutcomeOK,
	}

	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = -1
		result.Outcome = OutcomeTimeout
		result.Error = fmt.Errorf("%s timed out after %s", step.Cmd[0], step.Timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		result.ExitCode = -1
		result.Outcome = OutcomeCanceled
		result.Error = ctx.Err()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.Outcome = OutcomeExit
		} else {
			result.ExitCode = -1
			result.Outcome = OutcomeSpawn
			result.Error = err
		}
	}

	return result
}

func normalizeOutput(raw []byte) string {
	if len(raw) > MaxOutputBytes {
		raw = raw[:MaxOutputBytes]
	}
	if !utf8.Valid(raw) {
		raw = bytes.ToValidUTF8(raw, []byte("\uFFFD"))
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n")
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// FindPython returns the interpreter used for delegated validator scripts.
// An explicit override wins; otherwise python3 then python are looked up on
// PATH. It returns "" when neither is installed.
func FindPython(override string) string {
	if override != "" {
		return override
	}
	for _, name := range []string{"python3", "python"} {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Truncate shortens s to at most n bytes without splitting a rune
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
