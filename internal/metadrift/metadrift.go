// Package metadrift compares a project's META.yaml against the directories
// and key files that actually exist.
package metadrift

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
)

// MaxReviewAgeDays is how old project.last_reviewed may get before it is stale
const MaxReviewAgeDays = 30

// KeyFiles must be listed under files: whenever they exist
var KeyFiles = []string{"Makefile", "README.md", "CLAUDE.md", "package.json", "pyproject.toml", "requirements.txt"}

var ignoreDirs = map[string]bool{
	"node_modules": true, ".git": true, "__pycache__": true, "venv": true,
	".venv": true, "dist": true, "build": true,
}

// Betty standard folders may exist without being described in META.yaml
var bettyFolders = map[string]bool{
	"00_admin": true, "10_docs": true, "20_receipts": true, "30_config": true,
	"40_src": true, "70_evidence": true, "90_archive": true,
}

// Kind classifies an issue
type Kind string

const (
	KindMissing Kind = "MISSING"
	KindInvalid Kind = "INVALID"
	KindStale   Kind = "STALE"
	KindDrift   Kind = "DRIFT"
)

// Issue is one disagreement between META.yaml and the project
type Issue struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// Result holds the issues found for one project
type Result struct {
	Project string  `json:"project"`
	Issues  []Issue `json:"issues"`
}

// HasDrift reports whether any issue was found
func (r *Result) HasDrift() bool {
	return len(r.Issues) > 0
}

// Lines renders each issue as "KIND: message"
func (r *Result) Lines() []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.String()
	}
	return out
}

type meta struct {
	Project struct {
		LastReviewed string `yaml:"last_reviewed"`
	} `yaml:"project"`
	Folders map[string]any `yaml:"folders"`
	Files   map[string]any `yaml:"files"`
}

// Check analyses the project at root. A missing META.yaml is an issue, not
// an error; an unparseable one is an error.
func Check(root string, now time.Time) (*Result, error) {
	res := &Result{Project: filepath.Base(root)}
	path := filepath.Join(root, "META.yaml")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.add(KindMissing, "No META.yaml")
		return res, nil
	}
	if err != nil {
		return nil, drifterrors.NewMetaUnreadableError(path, err)
	}

	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, drifterrors.NewMetaUnreadableError(path, err)
	}

	res.checkLastReviewed(m.Project.LastReviewed, now)

	actual, err := actualFolders(root)
	if err != nil {
		return nil, drifterrors.NewMetaUnreadableError(root, err)
	}
	declared := keys(m.Folders)

	var unlisted, absent []string
	for name := range actual {
		if !declared[name] && !bettyFolders[name] {
			unlisted = append(unlisted, name)
		}
	}
	for name := range declared {
		if !actual[name] {
			absent = append(absent, name)
		}
	}
	if len(unlisted) > 0 {
		res.add(KindDrift, "Folders exist but not in META.yaml: %s", formatList(unlisted))
	}
	if len(absent) > 0 {
		res.add(KindDrift, "Folders in META.yaml but don't exist: %s", formatList(absent))
	}

	listed := keys(m.Files)
	var missingFiles []string
	for _, f := range KeyFiles {
		if _, err := os.Stat(filepath.Join(root, f)); err == nil && !listed[f] {
			missingFiles = append(missingFiles, f)
		}
	}
	if len(missingFiles) > 0 {
		res.add(KindDrift, "Key files exist but not in META.yaml: %s", formatList(missingFiles))
	}

	return res, nil
}

func (r *Result) add(kind Kind, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) checkLastReviewed(value string, now time.Time) {
	value = strings.TrimSpace(value)
	if value == "" {
		r.add(KindMissing, "No last_reviewed date")
		return
	}
	// Timestamps may carry a time part; only the date matters
	datePart := value
	if len(datePart) > 10 {
		datePart = datePart[:10]
	}
	reviewed, err := time.ParseInLocation("2006-01-02", datePart, now.Location())
	if err != nil {
		r.add(KindInvalid, "last_reviewed format '%s'", value)
		return
	}
	age := int(now.Sub(reviewed).Hours() / 24)
	if age > MaxReviewAgeDays {
		r.add(KindStale, "last_reviewed is %d days old", age)
	}
}

func actualFolders(root string) (map[string]bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	out := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || ignoreDirs[name] || strings.HasSuffix(name, "-env") {
			continue
		}
		out[name] = true
	}
	return out, nil
}

func keys(m map[string]any) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func formatList(names []string) string {
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}
