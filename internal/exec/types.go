package exec

import "time"

// Default timeouts for delegated subprocesses
const (
	GitTimeout       = 10 * time.Second
	ValidatorTimeout = 30 * time.Second
)

// MaxOutputBytes caps captured stdout/stderr per stream
const MaxOutputBytes = 32 * 1024

// Step represents a single subprocess invocation
type Step struct {
	ID      string        // Short label used in logs and metrics ("git", "repo_contract", ...)
	Cmd     []string      // Command and arguments
	Workdir string        // Working directory path
	Timeout time.Duration // Zero means no timeout
}

// Outcome classifies how a step ended
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeExit     Outcome = "exit"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeSpawn    Outcome = "spawn"
	OutcomeCanceled Outcome = "canceled"
)

// Result represents the outcome of an execution step
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Outcome  Outcome
	Error    error
}

// Succeeded reports whether the command ran and exited zero
func (r *Result) Succeeded() bool {
	return r != nil && r.Outcome == OutcomeOK
}

// Ran reports whether the command started and exited on its own,
// regardless of exit code.
func (r *Result) Ran() bool {
	return r != nil && (r.Outcome == OutcomeOK || r.Outcome == OutcomeExit)
}

// Combined returns stdout followed by stderr
func (r *Result) Combined() string {
	if r == nil {
		return ""
	}
	return r.Stdout + r.Stderr
}
