package drift

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bettyprotocol/betty-drift/internal/detect"
	"github.com/bettyprotocol/betty-drift/internal/exec"
	"github.com/bettyprotocol/betty-drift/internal/log"
	"github.com/bettyprotocol/betty-drift/internal/rules"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func mkdir(t *testing.T, root, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755))
}

// gitHandler answers git invocations the way a repository at head would
func gitHandler(head string, distance string) func(exec.Step) *exec.Result {
	return func(step exec.Step) *exec.Result {
		cmd := strings.Join(step.Cmd, " ")
		switch {
		case strings.Contains(cmd, "rev-parse --short HEAD"):
			return exec.OK(head + "\n")
		case strings.Contains(cmd, "rev-parse --abbrev-ref HEAD"):
			return exec.OK("main\n")
		case strings.Contains(cmd, "rev-list --count"):
			if distance == "" {
				return exec.Failed(128, "", "fatal: bad revision")
			}
			return exec.OK(distance + "\n")
		}
		return exec.Failed(1, "", "unexpected command: "+cmd)
	}
}

// newTestScan builds a scan over root with default rules, a fake runner
// that answers git queries and a fixed clock.
func newTestScan(t *testing.T, root string) (*Scan, *exec.FakeRunner) {
	t.Helper()
	runner := &exec.FakeRunner{Handler: gitHandler("abc1234", "0")}
	return &Scan{
		Root:    root,
		Rules:   rules.Universal(),
		Profile: detect.DetectProfile(root),
		Git:     detect.NewGit(root, runner),
		Runner:  runner,
		Python:  "python3",
		Logger:  log.Discard(),
		Now:     func() time.Time { return fixedNow },
	}, runner
}

// runCheck executes one check through an engine so findings get ids
func runCheck(t *testing.T, s *Scan, check func(context.Context, *Scan) []Finding, level int) []Finding {
	t.Helper()
	e := NewEngineWithChecks([]Check{{Name: "under_test", Level: level, Run: check}})
	findings, err := e.Run(context.Background(), s, level)
	require.NoError(t, err)
	return findings
}

// bettyRepo lays out a compliant repository with three registered validators
func bettyRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "validators/__init__.py", `AVAILABLE_VALIDATORS = {
    "a": "check_a",
    "b": "check_b",
    "c": "check_c",
}
`)
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, root, "validators/check_"+name+".py", "print('ok')\n")
	}
	writeFile(t, root, "schemas/repo.schema.json", "{}\n")
	writeFile(t, root, "taxonomies/kinds.yaml", "kinds: []\n")
	writeFile(t, root, "README.md", "# Repo\n")
	return root
}

func messages(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message
	}
	return out
}

func withCategory(findings []Finding, cat Category) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}
