package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var linkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

// Link is an internal markdown link found in a document
type Link struct {
	Target   string // link target without #fragment
	Line     int    // 1-based
	Column   int    // byte offset of the match within the line
	Resolved string // absolute filesystem path the target points at
	Exists   bool
}

// InternalLinks extracts internal links from a markdown file. Fenced code
// blocks are skipped, as are external URLs and pure anchors. A leading "/"
// resolves against root; anything else against the file's directory.
func InternalLinks(file, root string) []Link {
	content, ok := readText(file)
	if !ok {
		return nil
	}

	var links []Link
	inFence := false
	for i, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
			target := line[m[4]:m[5]]
			if isExternal(target) || strings.HasPrefix(target, "#") {
				continue
			}
			target, _, _ = strings.Cut(target, "#")
			if target == "" {
				continue
			}

			var resolved string
			if strings.HasPrefix(target, "/") {
				resolved = filepath.Join(root, filepath.FromSlash(strings.TrimLeft(target, "/")))
			} else {
				resolved = filepath.Join(filepath.Dir(file), filepath.FromSlash(target))
			}

			links = append(links, Link{
				Target:   target,
				Line:     i + 1,
				Column:   m[0],
				Resolved: resolved,
				Exists:   pathExists(resolved),
			})
		}
	}
	return links
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:")
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
