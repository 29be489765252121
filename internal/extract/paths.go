package extract

import (
	"regexp"
	"strings"
)

// backticked token containing a slash, or a bare slash-separated token
var pathRefRe = regexp.MustCompile("`([^`]+/[^`]+)`|([a-zA-Z0-9_-]+/[a-zA-Z0-9_/./-]+)")

var pathRefNoise = map[string]bool{"and/or": true, "w/": true, "n/a": true}

// PathReference is a path-like token found in a document
type PathReference struct {
	Path        string
	Line        int
	InBackticks bool
}

// PathReferences extracts path-like tokens from a file. Bare tokens directly
// preceded by an ASCII letter are ignored.
func PathReferences(file string) []PathReference {
	content, ok := readText(file)
	if !ok {
		return nil
	}

	var refs []PathReference
	for i, line := range strings.Split(content, "\n") {
		for _, m := range pathRefRe.FindAllStringSubmatchIndex(line, -1) {
			var path string
			backticked := m[2] >= 0
			if backticked {
				path = line[m[2]:m[3]]
			} else {
				if m[4] > 0 && isASCIILetter(line[m[4]-1]) {
					continue
				}
				path = line[m[4]:m[5]]
			}
			if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
				continue
			}
			if pathRefNoise[path] {
				continue
			}
			refs = append(refs, PathReference{Path: path, Line: i + 1, InBackticks: backticked})
		}
	}
	return refs
}

// InPathContext reports whether line[start:end] reads like a path: inside
// backticks, touching a path separator or dot, or right after "](".
func InPathContext(line string, start, end int) bool {
	before := line[:start]
	if strings.Count(before, "`")%2 == 1 {
		return true
	}
	if start > 0 && strings.ContainsRune(`/\.`, rune(line[start-1])) {
		return true
	}
	if end < len(line) && strings.ContainsRune(`/\.`, rune(line[end])) {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(before, " \t\r\n"), "](")
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
