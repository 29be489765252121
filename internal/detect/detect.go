package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bettyprotocol/betty-drift/internal/exec"
)

// Unknown is reported for git metadata that could not be read
const Unknown = "unknown"

// Profile records which optional subsystems a repository has. Checks use it
// to skip work that would only produce false positives.
type Profile struct {
	Root             string
	HasValidators    bool
	HasSchemas       bool
	HasTaxonomies    bool
	HasMetaYAML      bool
	HasProjectPrimer bool
	HasDriftRules    bool
	HasEvidence      bool
}

// DetectProfile probes the filesystem under root
func DetectProfile(root string) Profile {
	validators := filepath.Join(root, "validators")
	return Profile{
		Root:             root,
		HasValidators:    isDir(validators) && exists(filepath.Join(validators, "__init__.py")),
		HasSchemas:       isDir(filepath.Join(root, "schemas")),
		HasTaxonomies:    isDir(filepath.Join(root, "taxonomies")),
		HasMetaYAML:      isFile(filepath.Join(root, "META.yaml")),
		HasProjectPrimer: isFile(filepath.Join(root, "PROJECT_PRIMER.md")),
		HasDriftRules:    isFile(filepath.Join(root, "30_config", "drift_rules.yaml")),
		HasEvidence:      isDir(filepath.Join(root, "70_evidence")),
	}
}

// Summary returns a one-line description of the profile
func (p Profile) Summary() string {
	return fmt.Sprintf("validators=%v, schemas=%v, taxonomies=%v, meta=%v, primer=%v",
		p.HasValidators, p.HasSchemas, p.HasTaxonomies, p.HasMetaYAML, p.HasProjectPrimer)
}

// GitContext holds Git repository information
type GitContext struct {
	SHA    string
	Branch string
}

// Git queries repository state through an external git binary. Every
// failure degrades to Unknown or an ok=false result, never an error.
type Git struct {
	Root   string
	Runner exec.Runner
}

// NewGit creates a Git bound to root
func NewGit(root string, runner exec.Runner) *Git {
	return &Git{Root: root, Runner: runner}
}

func (g *Git) run(ctx context.Context, args ...string) (string, bool) {
	res := g.Runner.Run(ctx, exec.Step{
		ID:      "git",
		Cmd:     append([]string{"git"}, args...),
		Workdir: g.Root,
		Timeout: exec.GitTimeout,
	})
	if !res.Succeeded() {
		return "", false
	}
	return strings.TrimSpace(res.Stdout), true
}

// HeadShort returns the short SHA of HEAD
func (g *Git) HeadShort(ctx context.Context) string {
	if out, ok := g.run(ctx, "rev-parse", "--short", "HEAD"); ok && out != "" {
		return out
	}
	return Unknown
}

// Branch returns the current branch name
func (g *Git) Branch(ctx context.Context) string {
	if out, ok := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD"); ok && out != "" {
		return out
	}
	return Unknown
}

// Context reads SHA and branch together
func (g *Git) Context(ctx context.Context) GitContext {
	return GitContext{SHA: g.HeadShort(ctx), Branch: g.Branch(ctx)}
}

// CommitDistance counts commits reachable from to but not from from
func (g *Git) CommitDistance(ctx context.Context, from, to string) (int, bool) {
	out, ok := g.run(ctx, "rev-list", "--count", from+".."+to)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Helper functions

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
