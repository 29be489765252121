package exec

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner is a Runner for tests. Handler decides the result for each step;
// every step is recorded in Calls.
type FakeRunner struct {
	Handler func(step Step) *Result

	mu    sync.Mutex
	Calls []Step
}

// Run records the step and delegates to Handler
func (f *FakeRunner) Run(ctx context.Context, step Step) *Result {
	f.mu.Lock()
	f.Calls = append(f.Calls, step)
	f.mu.Unlock()

	if f.Handler == nil {
		return &Result{ExitCode: -1, Outcome: OutcomeSpawn, Stderr: "fake runner: no handler defined"}
	}
	res := f.Handler(step)
	if res == nil {
		return &Result{ExitCode: -1, Outcome: OutcomeSpawn}
	}
	return res
}

// Invoked reports whether a step whose joined command contains substr was run
func (f *FakeRunner) Invoked(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.Calls {
		if strings.Contains(strings.Join(call.Cmd, " "), substr) {
			return true
		}
	}
	return false
}

// OK builds a successful result with the given stdout
func OK(stdout string) *Result {
	return &Result{Stdout: stdout, Outcome: OutcomeOK}
}

// Failed builds a non-zero exit result
func Failed(code int, stdout, stderr string) *Result {
	return &Result{ExitCode: code, Stdout: stdout, Stderr: stderr, Outcome: OutcomeExit}
}

// TimedOut builds a timeout result
func TimedOut() *Result {
	return &Result{ExitCode: -1, Outcome: OutcomeTimeout}
}
