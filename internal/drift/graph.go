package drift

import (
	"path"
	"sort"
	"strings"

	"github.com/bettyprotocol/betty-drift/internal/extract"
)

// ReferenceGraph records which canonical documents reference which paths.
// All keys and values are slash-separated paths relative to the repo root.
type ReferenceGraph struct {
	Forward map[string]map[string]bool
	Reverse map[string]map[string]bool
}

func newReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{
		Forward: map[string]map[string]bool{},
		Reverse: map[string]map[string]bool{},
	}
}

func (g *ReferenceGraph) add(from, to string) {
	if g.Forward[from] == nil {
		g.Forward[from] = map[string]bool{}
	}
	g.Forward[from][to] = true
	if g.Reverse[to] == nil {
		g.Reverse[to] = map[string]bool{}
	}
	g.Reverse[to][from] = true
}

// Inbound returns the sorted documents referencing target
func (g *ReferenceGraph) Inbound(target string) []string {
	refs := g.Reverse[target]
	out := make([]string, 0, len(refs))
	for r := range refs {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// BuildReferenceGraph scans canonical-scope markdown for internal links and
// path references. Link targets escaping the root are dropped.
func (s *Scan) BuildReferenceGraph() *ReferenceGraph {
	g := newReferenceGraph()
	for _, rel := range s.canonicalFiles(true) {
		if g.Forward[rel] == nil {
			g.Forward[rel] = map[string]bool{}
		}

		for _, link := range extract.InternalLinks(s.abs(rel), s.Root) {
			target, ok := s.rel(link.Resolved)
			if !ok || target == "." {
				continue
			}
			g.add(rel, target)
		}

		for _, ref := range extract.PathReferences(s.abs(rel)) {
			target := path.Clean(strings.TrimPrefix(ref.Path, "./"))
			g.add(rel, target)
		}
	}
	return g
}
