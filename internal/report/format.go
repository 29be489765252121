// Package report renders drift reports as markdown, JSON and SARIF files.
package report

import (
	"fmt"
	"strings"
)

// Format selects which report files are written
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatBoth     Format = "both"
	FormatSARIF    Format = "sarif"
	FormatAll      Format = "all"
)

// ValidFormats lists accepted --format values
const ValidFormats = "md, json, both, sarif, all"

// ParseFormat parses a --format value
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatMarkdown, FormatJSON, FormatBoth, FormatSARIF, FormatAll:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Extensions returns the file extensions written for f, in write order
func (f Format) Extensions() []string {
	switch f {
	case FormatMarkdown:
		return []string{"md"}
	case FormatJSON:
		return []string{"json"}
	case FormatBoth:
		return []string{"md", "json"}
	case FormatSARIF:
		return []string{"sarif"}
	case FormatAll:
		return []string{"md", "json", "sarif"}
	}
	return nil
}

// IncludesMarkdown reports whether a markdown report is part of f
func (f Format) IncludesMarkdown() bool {
	for _, ext := range f.Extensions() {
		if ext == "md" {
			return true
		}
	}
	return false
}
