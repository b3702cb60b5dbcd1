package graph

import (
	"sort"
)

// ModuleSpec is the builder input for one module: its path and the raw
// import specifiers found in it.
type ModuleSpec struct {
	Path     string
	Language Language
	Imports  []string
}

// ImportResolver maps raw import specifiers to module paths.
type ImportResolver interface {
	// IsLocal reports whether specifier is relative or rooted in the project,
	// as opposed to a package-ecosystem import.
	IsLocal(specifier string, lang Language) bool

	// Resolve returns the module path a local specifier refers to, or false
	// when it cannot be resolved.
	Resolve(specifier, fromPath string, lang Language) (string, bool)
}

// MultiResolver is implemented by resolvers whose specifiers can name
// several modules at once, such as a Go package made of several files.
// Build prefers ResolveAll when it is available.
type MultiResolver interface {
	ResolveAll(specifier, fromPath string, lang Language) []string
}

// Module is a node of the dependency graph.
type Module struct {
	Path         string          `json:"path"`
	Language     Language        `json:"language"`
	Dependencies map[string]bool `json:"dependencies"`
	Dependents   map[string]bool `json:"dependents"`
}

// DependencyList returns the module's dependencies in sorted order.
func (m *Module) DependencyList() []string {
	return sortedKeys(m.Dependencies)
}

// DependentList returns the module's dependents in sorted order.
func (m *Module) DependentList() []string {
	return sortedKeys(m.Dependents)
}

// DependencyGraph is the module-level import graph of one analysis run.
// It is not modified after Build returns.
type DependencyGraph struct {
	Nodes  map[string]*Module `json:"nodes"`
	Cycles [][]string         `json:"cycles"`
}

// Paths returns all module paths in sorted order.
func (g *DependencyGraph) Paths() []string {
	out := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the number of dependency edges.
func (g *DependencyGraph) EdgeCount() int {
	n := 0
	for _, m := range g.Nodes {
		n += len(m.Dependencies)
	}
	return n
}

// Build constructs the dependency graph for the given modules.
//
// Only relative or rooted specifiers become edges; everything the resolver
// rejects is dropped silently. Reverse edges are filled in a second pass so
// that Dependents is always the exact transpose of Dependencies.
func Build(modules []ModuleSpec, resolver ImportResolver) *DependencyGraph {
	g := &DependencyGraph{Nodes: make(map[string]*Module, len(modules))}

	for _, spec := range modules {
		if _, exists := g.Nodes[spec.Path]; exists {
			continue
		}
		g.Nodes[spec.Path] = &Module{
			Path:         spec.Path,
			Language:     spec.Language,
			Dependencies: make(map[string]bool),
			Dependents:   make(map[string]bool),
		}
	}

	multi, _ := resolver.(MultiResolver)
	for _, spec := range modules {
		node := g.Nodes[spec.Path]
		for _, raw := range spec.Imports {
			if !resolver.IsLocal(raw, spec.Language) {
				continue
			}
			if multi != nil {
				for _, target := range multi.ResolveAll(raw, spec.Path, spec.Language) {
					node.Dependencies[target] = true
				}
				continue
			}
			target, ok := resolver.Resolve(raw, spec.Path, spec.Language)
			if !ok {
				continue
			}
			node.Dependencies[target] = true
		}
	}

	for _, node := range g.Nodes {
		for dep := range node.Dependencies {
			target, ok := g.Nodes[dep]
			if !ok {
				delete(node.Dependencies, dep)
				continue
			}
			target.Dependents[node.Path] = true
		}
	}

	g.Cycles = findCycles(g)
	return g
}

// findCycles runs a DFS from every unvisited node and reports the path
// segment closed by each back edge. Nodes and edges are visited in sorted
// order so that the report order is reproducible.
func findCycles(g *DependencyGraph) [][]string {
	visited := make(map[string]bool, len(g.Nodes))
	onStack := make(map[string]bool)
	var path []string
	cycles := [][]string{}

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, dep := range g.Nodes[id].DependencyList() {
			switch {
			case !visited[dep]:
				visit(dep)
			case onStack[dep]:
				start := indexOf(path, dep)
				if start < 0 {
					continue
				}
				cycle := make([]string, 0, len(path)-start+1)
				cycle = append(cycle, path[start:]...)
				cycle = append(cycle, dep)
				cycles = append(cycles, cycle)
			}
		}

		onStack[id] = false
		path = path[:len(path)-1]
	}

	for _, id := range g.Paths() {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
