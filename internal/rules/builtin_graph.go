package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Ids of the graph rules. Coupling analysis keys on them.
const (
	CircularDepsID   = "circular-deps"
	LayerViolationID = "layer-violation"
)

// CircularDeps reports each distinct import cycle once, on the cycle's
// first module.
type CircularDeps struct{}

func (CircularDeps) Name() string       { return "Circular Deps" }
func (CircularDeps) Severity() Severity { return SeverityCritical }
func (CircularDeps) Penalty() float64   { return 10 }

func (r CircularDeps) Check(ctx *Context) ([]Violation, error) {
	if ctx.Graph == nil {
		return nil, nil
	}

	seen := make(map[string]bool)
	var out []Violation
	for _, cycle := range ctx.Graph.Cycles {
		if len(cycle) < 2 {
			continue
		}
		sig := cycleSignature(cycle)
		if seen[sig] {
			continue
		}
		seen[sig] = true

		v := newViolation(r, cycle[0], 1,
			fmt.Sprintf("Circular dependency: %s", strings.Join(cycle, " -> ")))
		if len(cycle) == 2 {
			v.Impact = "The module imports itself, which obscures its load order"
			v.SuggestedFix = "Remove the self-import"
			out = append(out, v)
			continue
		}
		v.RelatedFile = cycle[1]
		v.Impact = fmt.Sprintf("%d modules cannot be changed, tested or loaded independently", len(cycle)-1)
		v.SuggestedFix = "Extract the shared code into a module both sides depend on, or invert one import behind an interface"
		out = append(out, v)
	}
	return out, nil
}

// cycleSignature identifies a cycle by its member set, so rotations and
// repeats found from different DFS entry points collapse.
func cycleSignature(cycle []string) string {
	members := append([]string(nil), cycle[:len(cycle)-1]...)
	sort.Strings(members)
	return strings.Join(members, "\x00")
}

// LayerViolation enforces the "layers" option: an ordered list of path
// prefixes, top layer first. A module may import modules of its own layer
// or of any layer below it. Modules outside every layer are unrestricted.
type LayerViolation struct{}

func (LayerViolation) Name() string       { return "Layer Violation" }
func (LayerViolation) Severity() Severity { return SeverityCritical }
func (LayerViolation) Penalty() float64   { return 8 }

func (r LayerViolation) Check(ctx *Context) ([]Violation, error) {
	layers := ctx.Config.StringList("layers", nil)
	if len(layers) == 0 || ctx.Graph == nil {
		return nil, nil
	}
	for i, l := range layers {
		layers[i] = strings.TrimSuffix(l, "/")
	}

	var out []Violation
	for _, p := range ctx.Graph.Paths() {
		from := layerOf(p, layers)
		if from < 0 {
			continue
		}
		for _, dep := range ctx.Graph.Nodes[p].DependencyList() {
			to := layerOf(dep, layers)
			if to < 0 || to >= from {
				continue
			}
			v := newViolation(r, p, 1, fmt.Sprintf("%s (layer %q) imports %s from higher layer %q",
				p, layers[from], dep, layers[to]))
			v.RelatedFile = dep
			v.Impact = "Lower layers depending on higher ones erode the architecture and create hidden cycles"
			v.SuggestedFix = fmt.Sprintf("Move the needed code down into %q or depend on an abstraction owned by it", layers[from])
			out = append(out, v)
		}
	}
	return out, nil
}

// layerOf returns the index of the longest layer prefix containing p, or
// -1.
func layerOf(p string, layers []string) int {
	best, bestLen := -1, -1
	for i, l := range layers {
		if (p == l || strings.HasPrefix(p, l+"/")) && len(l) > bestLen {
			best, bestLen = i, len(l)
		}
	}
	return best
}
