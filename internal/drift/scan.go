package drift

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bettyprotocol/betty-drift/internal/detect"
	"github.com/bettyprotocol/betty-drift/internal/exec"
	"github.com/bettyprotocol/betty-drift/internal/log"
	"github.com/bettyprotocol/betty-drift/internal/metrics"
	"github.com/bettyprotocol/betty-drift/internal/rules"
)

// Scan carries everything a check needs about the repository under
// inspection. It is built once per run and threaded through every check.
type Scan struct {
	Root    string
	Rules   *rules.Rules
	Profile detect.Profile
	Git     *detect.Git
	Runner  exec.Runner
	Python  string
	Logger  *log.Logger
	Metrics *metrics.Metrics

	// Now returns the reference time for age computations
	Now func() time.Time

	inventories map[string]any
}

// NewScan creates a Scan for root with a local subprocess runner
func NewScan(root string, r *rules.Rules, logger *log.Logger) *Scan {
	runner := exec.NewLocalRunner()
	if logger == nil {
		logger = log.Discard()
	}
	return &Scan{
		Root:    root,
		Rules:   r,
		Profile: detect.DetectProfile(root),
		Git:     detect.NewGit(root, runner),
		Runner:  runner,
		Python:  exec.FindPython(""),
		Logger:  logger,
		Now:     time.Now,
	}
}

// Inventories returns the validator inventories recorded during the run
func (s *Scan) Inventories() map[string]any {
	return s.inventories
}

func (s *Scan) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scan) logger() *log.Logger {
	if s.Logger == nil {
		return log.Discard()
	}
	return s.Logger
}

// abs converts a slash-separated repo-relative path to a filesystem path
func (s *Scan) abs(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// rel converts a filesystem path under the root to a slash-separated
// relative path. ok is false when the path escapes the root.
func (s *Scan) rel(p string) (string, bool) {
	r, err := filepath.Rel(s.Root, p)
	if err != nil {
		return "", false
	}
	r = filepath.ToSlash(r)
	if r == ".." || strings.HasPrefix(r, "../") {
		return "", false
	}
	return r, true
}

func (s *Scan) exists(rel string) bool {
	_, err := os.Stat(s.abs(rel))
	return err == nil
}

func (s *Scan) isFile(rel string) bool {
	info, err := os.Stat(s.abs(rel))
	return err == nil && info.Mode().IsRegular()
}

// canonicalFiles expands the canonical scope into repo-relative files, in
// scope order, without duplicates and with excludes applied.
func (s *Scan) canonicalFiles(mdOnly bool) []string {
	seen := map[string]bool{}
	var out []string

	for _, entry := range s.Rules.CanonicalScope {
		var matches []string
		if rules.IsGlob(entry) {
			matches = s.globFiles(entry)
		} else if s.isFile(entry) {
			matches = []string{entry}
		}

		for _, m := range matches {
			m = path.Clean(m)
			if seen[m] || s.Rules.IsExcluded(m) {
				continue
			}
			if mdOnly && !strings.EqualFold(path.Ext(m), ".md") {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// globFiles returns the files under the root matching pattern, sorted
func (s *Scan) globFiles(pattern string) []string {
	m, err := doublestar.Glob(os.DirFS(s.Root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		s.logger().Debug("glob failed", "pattern", pattern, "error", err)
		return nil
	}
	sort.Strings(m)
	return m
}

// runScript executes a repository-provided Python script. The result is nil
// when no interpreter is available.
func (s *Scan) runScript(ctx context.Context, id, script string, args ...string) *exec.Result {
	if s.Python == "" {
		s.logger().Warn("no python interpreter found, skipping delegated check", "check", id)
		return nil
	}
	cmd := append([]string{s.Python, s.abs(script)}, args...)
	res := s.Runner.Run(ctx, exec.Step{
		ID:      id,
		Cmd:     cmd,
		Workdir: s.Root,
		Timeout: exec.ValidatorTimeout,
	})
	s.Metrics.RecordSubprocess(id, string(res.Outcome), res.Duration)

	switch {
	case res.Outcome == exec.OutcomeTimeout:
		s.logger().ForScript(id, script).Warn("delegated check timed out")
	case !res.Ran():
		s.logger().ForScript(id, script).Warn("could not run delegated check", "error", res.Error)
	}
	return res
}

// headShort returns HEAD's short SHA, recording the git call
func (s *Scan) headShort(ctx context.Context) string {
	if s.Git == nil {
		return detect.Unknown
	}
	start := time.Now()
	sha := s.Git.HeadShort(ctx)
	outcome := string(exec.OutcomeOK)
	if sha == detect.Unknown {
		outcome = string(exec.OutcomeExit)
	}
	s.Metrics.RecordSubprocess("git", outcome, time.Since(start))
	return sha
}

func (s *Scan) commitDistance(ctx context.Context, from, to string) (int, bool) {
	if s.Git == nil {
		return 0, false
	}
	start := time.Now()
	n, ok := s.Git.CommitDistance(ctx, from, to)
	outcome := string(exec.OutcomeOK)
	if !ok {
		outcome = string(exec.OutcomeExit)
	}
	s.Metrics.RecordSubprocess("git", outcome, time.Since(start))
	return n, ok
}
