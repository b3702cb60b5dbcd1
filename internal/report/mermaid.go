package report

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/dusk-indust/archlint/internal/graph"
)

// cycleLinkStyle is applied to edges that lie on a detected cycle.
const cycleLinkStyle = "stroke:#d33,stroke-width:2px"

// maxDirLabel caps the length of a directory subgraph title, in runes.
const maxDirLabel = 40

// Mermaid produces a Mermaid graph TD diagram of g. Modules are grouped by
// directory; edges that lie on a cycle are drawn in red.
func Mermaid(g *graph.DependencyGraph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if g == nil || len(g.Nodes) == 0 {
		return sb.String()
	}

	paths := g.Paths()
	nodeIDs := make(map[string]string, len(paths))
	byDir := make(map[string][]string)
	for i, p := range paths {
		nodeIDs[p] = "N" + strconv.Itoa(i)
		dir := path.Dir(p)
		byDir[dir] = append(byDir[dir], p)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for i, dir := range dirs {
		members := byDir[dir]
		if dir == "." {
			for _, m := range members {
				fmt.Fprintf(&sb, "  %s[\"%s\"]\n", nodeIDs[m], label(path.Base(m)))
			}
			continue
		}
		fmt.Fprintf(&sb, "  subgraph D%d[\"%s\"]\n", i, label(truncate(dir, maxDirLabel)))
		for _, m := range members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeIDs[m], label(path.Base(m)))
		}
		sb.WriteString("  end\n")
	}

	onCycle := cycleEdges(g.Cycles)
	var red []string
	n := 0
	for _, p := range paths {
		for _, dep := range g.Nodes[p].DependencyList() {
			fmt.Fprintf(&sb, "  %s --> %s\n", nodeIDs[p], nodeIDs[dep])
			if onCycle[[2]string{p, dep}] {
				red = append(red, strconv.Itoa(n))
			}
			n++
		}
	}
	if len(red) > 0 {
		fmt.Fprintf(&sb, "  linkStyle %s %s\n", strings.Join(red, ","), cycleLinkStyle)
	}
	return sb.String()
}

// cycleEdges returns the set of (from, to) pairs walked by the cycles.
func cycleEdges(cycles [][]string) map[[2]string]bool {
	out := make(map[[2]string]bool)
	for _, c := range cycles {
		for i := 0; i+1 < len(c); i++ {
			out[[2]string{c[i], c[i+1]}] = true
		}
	}
	return out
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func label(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
