package extract

import (
	"regexp"
	"strings"
)

var primerSHARe = regexp.MustCompile(`\*\*Repo SHA\*\*:\s*([a-f0-9]+)`)

// PrimerSHA returns the repository SHA recorded in a generated primer
func PrimerSHA(content string) (string, bool) {
	m := primerSHARe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DirectoryMapLine returns the 1-based line of the first directory-tree entry
// mentioning validators/, or 0 when there is none.
func DirectoryMapLine(content string) int {
	for i, line := range strings.Split(content, "\n") {
		if !strings.Contains(strings.ToLower(line), "validators/") {
			continue
		}
		if strings.Contains(line, "├──") || strings.Contains(line, "│") {
			return i + 1
		}
	}
	return 0
}
