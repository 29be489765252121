package rules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettyprotocol/betty-drift/internal/log"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Level: log.LevelDebug, Format: log.FormatText, Output: log.NewOutput(buf)})
}

func TestUniversal(t *testing.T) {
	r := Universal()

	assert.Equal(t, []string{"README.md", "CLAUDE.md", "META.yaml", "CHANGELOG.md", "PROJECT_PRIMER.md"}, r.CanonicalScope)
	assert.Contains(t, r.Excludes, "70_evidence/**")
	assert.Contains(t, r.Excludes, "*-env/**")
	assert.Contains(t, r.ProtectedFromArchive, "README.md")
	assert.Empty(t, r.StalePathPatterns)

	assert.Equal(t, 0.2, r.ValidatorInventory.OmissionThreshold)
	assert.Equal(t, 90, r.ArchiveCandidates.MinAgeDays)
	assert.True(t, r.LinkValidation.IsEnabled())
}

func TestResolve_Precedence(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoRulesPath), "canonical_scope: [repo.md]\n")
		explicit := filepath.Join(t.TempDir(), "rules.yaml")
		writeFile(t, explicit, "canonical_scope: [explicit.md]\n")

		res := Resolve(explicit, root, nil)
		assert.Equal(t, SourceExplicit, res.Source)
		assert.Equal(t, explicit, res.Path)
		assert.Equal(t, []string{"explicit.md"}, res.Rules.CanonicalScope)
	})

	t.Run("repo file when no explicit path", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoRulesPath), "canonical_scope: [repo.md]\n")

		res := Resolve("", root, nil)
		assert.Equal(t, SourceRepo, res.Source)
		assert.Equal(t, []string{"repo.md"}, res.Rules.CanonicalScope)
	})

	t.Run("missing explicit falls through to repo file", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoRulesPath), "canonical_scope: [repo.md]\n")

		res := Resolve(filepath.Join(root, "nope.yaml"), root, nil)
		assert.Equal(t, SourceRepo, res.Source)
	})

	t.Run("malformed files fall through to defaults", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, RepoRulesPath), "canonical_scope: [unclosed\n")
		explicit := filepath.Join(root, "explicit.yaml")
		writeFile(t, explicit, "- just\n- a list\n")

		res := Resolve(explicit, root, nil)
		assert.Equal(t, SourceDefaults, res.Source)
		assert.Empty(t, res.Path)
		assert.Equal(t, Universal().CanonicalScope, res.Rules.CanonicalScope)
	})

	t.Run("nothing configured", func(t *testing.T) {
		res := Resolve("", t.TempDir(), nil)
		assert.Equal(t, SourceDefaults, res.Source)
	})
}

func TestParse_NotMapping(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty document", ""},
		{"null document", "~\n"},
		{"sequence", "- a\n"},
		{"scalar", "hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test", nil)
			assert.Error(t, err)
		})
	}
}

func TestParse_KeepsSubDefaults(t *testing.T) {
	r, err := Parse([]byte(`
canonical_scope:
  - README.md
  - 10_docs/**/*.md
validator_inventory:
  omission_threshold: 0.5
archive_candidates:
  candidate_classes:
    - path_pattern: "10_docs/notes/*.md"
      exclude: ["10_docs/notes/keep-*.md"]
      description: Scratch notes
`), "test", nil)
	require.NoError(t, err)

	assert.Equal(t, 0.5, r.ValidatorInventory.OmissionThreshold)
	assert.Equal(t, "validators/__init__.py", r.ValidatorInventory.Registry)
	assert.Equal(t, 3, r.ValidatorInventory.GeneratedMinOmissions)
	assert.Equal(t, 90, r.ArchiveCandidates.MinAgeDays)
	require.Len(t, r.ArchiveCandidates.CandidateClasses, 1)
	assert.Empty(t, r.Excludes, "lists absent from the file stay empty")
}

func TestParse_UnknownKeysWarn(t *testing.T) {
	var buf bytes.Buffer
	_, err := Parse([]byte("canonical_scope: []\nmystery_key: 1\n"), "drift_rules.yaml", bufferLogger(&buf))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "unknown keys")
	assert.Contains(t, buf.String(), "mystery_key")
	assert.Contains(t, buf.String(), "consumed rule keys")
}

func TestStalePathRule_Conditions(t *testing.T) {
	r, err := Parse([]byte(`
stale_path_patterns:
  - pattern: "old_dir/"
    replacement: "new_dir/"
    check_exists: true
  - pattern: "legacy"
    severity: MAJOR
    conditions:
      check_exists: true
      require_path_context: true
  - pattern: "plain"
`), "test", nil)
	require.NoError(t, err)
	require.Len(t, r.StalePathPatterns, 3)

	top, nested, plain := r.StalePathPatterns[0], r.StalePathPatterns[1], r.StalePathPatterns[2]

	assert.True(t, top.NeedsReplacement())
	assert.False(t, top.NeedsPathContext())
	assert.Equal(t, "MINOR", top.SeverityName())

	assert.True(t, nested.NeedsReplacement())
	assert.True(t, nested.NeedsPathContext())
	assert.Equal(t, "MAJOR", nested.SeverityName())

	assert.False(t, plain.NeedsReplacement())
	assert.False(t, plain.NeedsPathContext())
}

func TestGenerator_Defaults(t *testing.T) {
	r, err := Parse([]byte(`
generator_drift:
  PROJECT_PRIMER.md:
    allowed_sha_lag_commits: 3
`), "test", nil)
	require.NoError(t, err)

	g := r.Generator(PrimerDoc)
	assert.Equal(t, 3, g.AllowedSHALagCommits)
	assert.Equal(t, "generate-project-primer", g.FixCommand)
	assert.Equal(t, 2, g.DirectoryMapMinOmissions)
	assert.Len(t, g.SuspectedCauses, 2)
	assert.Len(t, g.InvestigationSteps, 3)

	other := Universal().Generator("OTHER.md")
	assert.Equal(t, 0, other.AllowedSHALagCommits)
}

func TestLinkValidation(t *testing.T) {
	disabled := false
	lv := LinkValidation{Enabled: &disabled, Ignore: []string{"90_archive/**", "*.pdf"}}

	assert.False(t, lv.IsEnabled())
	assert.True(t, lv.Ignores("90_archive/old/x.md"))
	assert.True(t, lv.Ignores("manual.pdf"))
	assert.False(t, lv.Ignores("docs/manual.md"))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"70_evidence/**", "70_evidence/drift/x.md", true},
		{"*-env/**", "my-env/lib/site.py", true},
		{"README.md", "README.md", true},
		{"README.md", "docs/README.md", false},
		{"10_docs/*.md", "10_docs/a.md", true},
		{"10_docs/*.md", "10_docs/sub/a.md", false},
		{"**/*.md", "a/b/c.md", true},
		{"[", "[", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.path))
		})
	}
}

func TestIsGlob(t *testing.T) {
	assert.True(t, IsGlob("10_docs/**/*.md"))
	assert.True(t, IsGlob("docs/?.md"))
	assert.False(t, IsGlob("README.md"))
}

func TestArchiveCandidatesMatch(t *testing.T) {
	ac := ArchiveCandidates{CandidateClasses: []CandidateClass{
		{PathPattern: "10_docs/notes/*.md", Exclude: []string{"10_docs/notes/keep-*.md"}, Description: "Scratch notes"},
		{PathPattern: "**/DRAFT_*.md"},
	}}

	cc, ok := ac.Match("10_docs/notes/idea.md")
	require.True(t, ok)
	assert.Equal(t, "Scratch notes", cc.Description)

	_, ok = ac.Match("10_docs/notes/keep-this.md")
	assert.False(t, ok)

	cc, ok = ac.Match("a/b/DRAFT_plan.md")
	require.True(t, ok)
	assert.Equal(t, "Matched candidate class", cc.Description)

	_, ok = ac.Match("README.md")
	assert.False(t, ok)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Universal())
	require.NoError(t, err)

	back, err := Parse(data, "marshalled", nil)
	require.NoError(t, err)
	assert.Equal(t, Universal().CanonicalScope, back.CanonicalScope)
	assert.Equal(t, Universal().Excludes, back.Excludes)
}
