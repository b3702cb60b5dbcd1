package graph

import (
	"context"
	"fmt"
	"io"
)

// Store is a queryable snapshot of one analysis run's dependency graph.
// Implementations: KuzuStore (cgo, export), MemStore (MCP server, tests).
// Analysis never reads a Store back; it is an export and query surface.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddModule(ctx context.Context, rec ModuleRecord) error
	AddDependency(ctx context.Context, from, to string) error

	// Read operations.
	GetModule(ctx context.Context, path string) (*ModuleRecord, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changed []string) (*ImpactResult, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this depend on?
	DirectionDownstream Direction = "downstream" // what depends on this?
)

// Populate writes every module of g, and every DEPENDS_ON edge, into store.
// records supplies per-module metrics keyed by path; modules without a
// record are stored with zero metrics.
func Populate(ctx context.Context, store Store, g *DependencyGraph, records map[string]ModuleRecord) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	paths := g.Paths()
	for _, p := range paths {
		rec, ok := records[p]
		if !ok {
			node := g.Nodes[p]
			rec = ModuleRecord{
				Path:     p,
				Language: node.Language,
				Ca:       len(node.Dependents),
				Ce:       len(node.Dependencies),
			}
		}
		rec.Path = p
		if err := store.AddModule(ctx, rec); err != nil {
			return fmt.Errorf("add module %s: %w", p, err)
		}
	}

	for _, p := range paths {
		for _, dep := range g.Nodes[p].DependencyList() {
			if err := store.AddDependency(ctx, p, dep); err != nil {
				return fmt.Errorf("add dependency %s -> %s: %w", p, dep, err)
			}
		}
	}
	return nil
}
