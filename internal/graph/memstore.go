package graph

import (
	"context"
	"math"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	modules map[string]ModuleRecord
	deps    map[string]map[string]bool // from -> to
	rdeps   map[string]map[string]bool // to -> from
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		modules: make(map[string]ModuleRecord),
		deps:    make(map[string]map[string]bool),
		rdeps:   make(map[string]map[string]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddModule stores a module record keyed by its path, replacing any
// previous record for the same path.
func (m *MemStore) AddModule(_ context.Context, rec ModuleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[rec.Path] = rec
	return nil
}

// AddDependency records that from imports to.
func (m *MemStore) AddDependency(_ context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addEdge(m.deps, from, to)
	addEdge(m.rdeps, to, from)
	return nil
}

func addEdge(adj map[string]map[string]bool, from, to string) {
	set, ok := adj[from]
	if !ok {
		set = make(map[string]bool)
		adj[from] = set
	}
	set[to] = true
}

// GetModule returns the record for path, or nil if not found.
func (m *MemStore) GetModule(_ context.Context, path string) (*ModuleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.modules[path]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// GetDependencies performs a BFS from path in the given direction, up to
// maxDepth hops. It returns one DependencyChain per reachable module.
func (m *MemStore) GetDependencies(_ context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	adj := m.deps
	if direction == DirectionDownstream {
		adj = m.rdeps
	}

	// BFS state: each entry tracks the path from the start to the current node.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{path: true}
	queue := []bfsEntry{{id: path, path: []string{path}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range sortedKeys(adj[entry.id]) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// AssessImpact computes the blast radius of changing the given modules:
// the modules importing them directly, and the full set of modules that
// reach them through imports.
func (m *MemStore) AssessImpact(_ context.Context, changed []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	changedSet := make(map[string]bool, len(changed))
	for _, c := range changed {
		changedSet[c] = true
	}

	direct := make(map[string]bool)
	for _, c := range changed {
		for from := range m.rdeps[c] {
			if !changedSet[from] {
				direct[from] = true
			}
		}
	}

	all := make(map[string]bool, len(direct))
	frontier := make([]string, 0, len(direct))
	for d := range direct {
		all[d] = true
		frontier = append(frontier, d)
	}
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for from := range m.rdeps[id] {
				if changedSet[from] || all[from] {
					continue
				}
				all[from] = true
				next = append(next, from)
			}
		}
		frontier = next
	}

	return newImpactResult(direct, all, len(m.modules)), nil
}

// Stats returns module and edge counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	edges := 0
	for _, set := range m.deps {
		edges += len(set)
	}
	return &GraphStats{ModuleCount: len(m.modules), EdgeCount: edges}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// newImpactResult builds an ImpactResult with sorted lists and a risk score
// equal to the affected share of all modules.
func newImpactResult(direct, transitive map[string]bool, total int) *ImpactResult {
	risk := 0.0
	if total > 0 {
		risk = math.Min(1.0, float64(len(transitive))/float64(total))
	}
	return &ImpactResult{
		DirectlyAffected:     sortedKeys(direct),
		TransitivelyAffected: sortedKeys(transitive),
		RiskScore:            risk,
	}
}
