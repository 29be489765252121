// Package extract parses canonical documents into inventories and references.
//
// Every function here is pure apart from reading its input file, and
// degrades to an empty result when the file is missing or unreadable.
package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	registryEntryRe   = regexp.MustCompile(`"(\w+)":\s*"check_\w+"`)
	validatorPathRe   = regexp.MustCompile(`validators/check_(\w+)\.py`)
	checkMentionRe    = regexp.MustCompile(`\bcheck_(\w+)\b`)
	checkFileRe       = regexp.MustCompile(`check_(\w+)\.py`)
	claudeBulletRe    = regexp.MustCompile("^\\s*-\\s*`(\\w+)`\\s*-")
	validatorTableRe  = regexp.MustCompile("\\|\\s*`(\\w+)`\\s*\\|\\s*`check_\\w+\\.py`")
	readmeStopMention = map[string]bool{
		"exists": true, "your": true, "that": true, "if": true,
		"for": true, "this": true, "the": true,
	}
)

// Set is an unordered collection of names
type Set map[string]struct{}

// NewSet builds a Set from names
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts a name
func (s Set) Add(name string) { s[name] = struct{}{} }

// Has reports membership
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Minus returns the names in s that are not in other
func (s Set) Minus(other Set) Set {
	out := Set{}
	for n := range s {
		if !other.Has(n) {
			out.Add(n)
		}
	}
	return out
}

// Sorted returns the names in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func readText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func collect(s Set, re *regexp.Regexp, content string) {
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		s.Add(m[1])
	}
}

// RegisteredValidators reads the ground-truth validator names from a registry
// file with entries like "houston_docmeta": "check_houston_docmeta".
func RegisteredValidators(registryPath string) Set {
	out := Set{}
	content, ok := readText(registryPath)
	if !ok {
		return out
	}
	collect(out, registryEntryRe, content)
	return out
}

// ValidatorFiles lists validator file basenames in dir matching glob
func ValidatorFiles(dir, glob string) Set {
	out := Set{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, err := doublestar.Match(glob, e.Name()); err == nil && ok {
			out.Add(e.Name())
		}
	}
	return out
}

// ValidatorName maps check_foo.py to foo
func ValidatorName(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), ".py")
	return strings.TrimPrefix(name, "check_")
}

// ValidatorNames maps a set of validator files to validator names
func ValidatorNames(files Set) Set {
	out := Set{}
	for f := range files {
		out.Add(ValidatorName(f))
	}
	return out
}

// ClaimedByReadme extracts validator names mentioned in a README: script
// paths and bare check_* identifiers, minus prose and wildcard fragments.
func ClaimedByReadme(path string) Set {
	out := Set{}
	content, ok := readText(path)
	if !ok {
		return out
	}
	collect(out, validatorPathRe, content)
	for _, m := range checkMentionRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if readmeStopMention[name] || strings.HasSuffix(name, "_") {
			continue
		}
		out.Add(name)
	}
	return out
}

// ClaimedByClaude extracts names from the "Available Validators" bullet list
// of CLAUDE.md plus any check_*.py mention.
func ClaimedByClaude(path string) Set {
	out := Set{}
	content, ok := readText(path)
	if !ok {
		return out
	}

	inSection := false
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "Available Validators") {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "**") {
			if !strings.Contains(strings.ToLower(line), "validator") {
				break
			}
		}
		if m := claudeBulletRe.FindStringSubmatch(line); m != nil {
			out.Add(m[1])
		}
	}

	collect(out, checkFileRe, content)
	return out
}

// ClaimedByValidatorsReadme extracts names from validators/README.md table rows
func ClaimedByValidatorsReadme(path string) Set {
	out := Set{}
	content, ok := readText(path)
	if !ok {
		return out
	}
	collect(out, validatorTableRe, content)
	collect(out, checkFileRe, content)
	return out
}

// ClaimedByFileMentions extracts check_*.py mentions. Used for the standards
// guide and the primer directory map.
func ClaimedByFileMentions(path string) Set {
	out := Set{}
	content, ok := readText(path)
	if !ok {
		return out
	}
	collect(out, checkFileRe, content)
	return out
}

// Claimed dispatches to the extractor suited to a canonical document
func Claimed(doc, path string) Set {
	switch doc {
	case "README.md":
		return ClaimedByReadme(path)
	case "CLAUDE.md":
		return ClaimedByClaude(path)
	case "validators/README.md":
		return ClaimedByValidatorsReadme(path)
	default:
		return ClaimedByFileMentions(path)
	}
}
