package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bettyprotocol/betty-drift/internal/log"
)

// Source identifies where the resolved rules came from
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceRepo     Source = "repo"
	SourceDefaults Source = "defaults"
)

// Resolved is the outcome of rule resolution
type Resolved struct {
	Rules  *Rules
	Source Source
	Path   string // empty for defaults
}

// Resolve returns the first rules that load successfully, in order: the
// explicit path, the repository override file, universal defaults. Failures
// are logged and never returned.
func Resolve(explicitPath, repoRoot string, logger *log.Logger) *Resolved {
	if logger == nil {
		logger = log.Discard()
	}

	if explicitPath != "" {
		r, err := Load(explicitPath, logger)
		if err == nil {
			logger.Info("loaded rules", "path", explicitPath)
			return &Resolved{Rules: r, Source: SourceExplicit, Path: explicitPath}
		}
		logger.WithError(err).Warn("explicit rules file unusable, falling back", "path", explicitPath)
	}

	repoPath := filepath.Join(repoRoot, filepath.FromSlash(RepoRulesPath))
	if info, err := os.Stat(repoPath); err == nil && info.Mode().IsRegular() {
		r, err := Load(repoPath, logger)
		if err == nil {
			logger.Info("loaded rules", "path", repoPath)
			return &Resolved{Rules: r, Source: SourceRepo, Path: repoPath}
		}
		logger.WithError(err).Warn("repository rules file unusable, falling back", "path", repoPath)
	}

	logger.Info("using universal defaults (no drift_rules.yaml found)")
	return &Resolved{Rules: Universal(), Source: SourceDefaults}
}

// ErrNotMapping is returned when a rules document is not a YAML mapping
var ErrNotMapping = errors.New("rules file must be a YAML mapping")

// Load parses a single rules file. Absent sub-configs keep their defaults;
// absent lists stay empty.
func Load(path string, logger *log.Logger) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path, logger)
}

// Parse decodes rules from YAML bytes. source is only used in log messages.
func Parse(data []byte, source string, logger *log.Logger) (*Rules, error) {
	if logger == nil {
		logger = log.Discard()
	}

	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	if top == nil {
		return nil, ErrNotMapping
	}

	r := withSubDefaults()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	unknown, consumed := classifyKeys(top)
	if len(unknown) > 0 {
		logger.Warn("unknown keys in rules file", "source", source, "keys", unknown)
	}
	logger.Debug("consumed rule keys", "source", source, "keys", consumed)

	return r, nil
}

func classifyKeys(top map[string]yaml.Node) (unknown, consumed []string) {
	known := make(map[string]bool, len(KnownKeys))
	for _, k := range KnownKeys {
		known[k] = true
	}
	for k := range top {
		if known[k] {
			consumed = append(consumed, k)
		} else {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	sort.Strings(consumed)
	return unknown, consumed
}

// Marshal renders rules as YAML
func Marshal(r *Rules) ([]byte, error) {
	return yaml.Marshal(r)
}
