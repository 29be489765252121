package detect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bettyprotocol/betty-drift/internal/exec"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		name  string
		setup func(root string)
		check func(t *testing.T, p Profile)
	}{
		{
			name:  "empty repository",
			setup: func(root string) {},
			check: func(t *testing.T, p Profile) {
				if p.HasValidators || p.HasSchemas || p.HasTaxonomies || p.HasMetaYAML {
					t.Errorf("expected empty profile, got %+v", p)
				}
			},
		},
		{
			name: "validators dir without package marker",
			setup: func(root string) {
				writeFile(t, filepath.Join(root, "validators", "check_a.py"), "")
			},
			check: func(t *testing.T, p Profile) {
				if p.HasValidators {
					t.Error("validators/ without __init__.py should not count")
				}
			},
		},
		{
			name: "full betty layout",
			setup: func(root string) {
				writeFile(t, filepath.Join(root, "validators", "__init__.py"), "")
				writeFile(t, filepath.Join(root, "schemas", "a.yaml"), "")
				writeFile(t, filepath.Join(root, "taxonomies", "t.yaml"), "")
				writeFile(t, filepath.Join(root, "META.yaml"), "project: {}\n")
				writeFile(t, filepath.Join(root, "PROJECT_PRIMER.md"), "# Primer\n")
				writeFile(t, filepath.Join(root, "30_config", "drift_rules.yaml"), "{}\n")
				writeFile(t, filepath.Join(root, "70_evidence", ".keep"), "")
			},
			check: func(t *testing.T, p Profile) {
				if !p.HasValidators || !p.HasSchemas || !p.HasTaxonomies {
					t.Errorf("expected subsystems detected, got %+v", p)
				}
				if !p.HasMetaYAML || !p.HasProjectPrimer || !p.HasDriftRules || !p.HasEvidence {
					t.Errorf("expected files detected, got %+v", p)
				}
			},
		},
		{
			name: "META.yaml as directory is not a file",
			setup: func(root string) {
				if err := os.MkdirAll(filepath.Join(root, "META.yaml"), 0o755); err != nil {
					t.Fatal(err)
				}
			},
			check: func(t *testing.T, p Profile) {
				if p.HasMetaYAML {
					t.Error("a directory named META.yaml should not count")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(root)
			p := DetectProfile(root)
			if p.Root != root {
				t.Errorf("Root = %q, want %q", p.Root, root)
			}
			tt.check(t, p)
		})
	}
}

func TestProfileSummary(t *testing.T) {
	s := Profile{HasValidators: true}.Summary()
	if !strings.Contains(s, "validators=true") || !strings.Contains(s, "schemas=false") {
		t.Errorf("unexpected summary: %s", s)
	}
}

func fakeGit(outputs map[string]*exec.Result) *exec.FakeRunner {
	return &exec.FakeRunner{
		Handler: func(step exec.Step) *exec.Result {
			if res, ok := outputs[strings.Join(step.Cmd, " ")]; ok {
				return res
			}
			return exec.Failed(128, "", "fatal: not a git repository")
		},
	}
}

func TestGitContext(t *testing.T) {
	runner := fakeGit(map[string]*exec.Result{
		"git rev-parse --short HEAD":      exec.OK("abc1234\n"),
		"git rev-parse --abbrev-ref HEAD": exec.OK("main\n"),
	})
	git := NewGit("/repo", runner)

	gc := git.Context(context.Background())
	if gc.SHA != "abc1234" {
		t.Errorf("SHA = %q, want abc1234", gc.SHA)
	}
	if gc.Branch != "main" {
		t.Errorf("Branch = %q, want main", gc.Branch)
	}

	for _, call := range runner.Calls {
		if call.Workdir != "/repo" {
			t.Errorf("git should run in the repo root, got %q", call.Workdir)
		}
		if call.Timeout != exec.GitTimeout {
			t.Errorf("git timeout = %v, want %v", call.Timeout, exec.GitTimeout)
		}
	}
}

func TestGitDegradesToUnknown(t *testing.T) {
	tests := []struct {
		name   string
		result *exec.Result
	}{
		{"not a repository", exec.Failed(128, "", "fatal")},
		{"timeout", exec.TimedOut()},
		{"empty output", exec.OK("   \n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &exec.FakeRunner{Handler: func(exec.Step) *exec.Result { return tt.result }}
			gc := NewGit("/repo", runner).Context(context.Background())
			if gc.SHA != Unknown || gc.Branch != Unknown {
				t.Errorf("expected unknown metadata, got %+v", gc)
			}
		})
	}
}

func TestCommitDistance(t *testing.T) {
	tests := []struct {
		name   string
		result *exec.Result
		want   int
		wantOK bool
	}{
		{"two commits", exec.OK("2\n"), 2, true},
		{"zero", exec.OK("0"), 0, true},
		{"unknown revision", exec.Failed(128, "", "bad revision"), 0, false},
		{"garbage", exec.OK("lots"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := fakeGit(map[string]*exec.Result{
				"git rev-list --count abc123..def456": tt.result,
			})
			got, ok := NewGit("/repo", runner).CommitDistance(context.Background(), "abc123", "def456")
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("CommitDistance() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
