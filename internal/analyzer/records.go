package analyzer

import (
	"github.com/dusk-indust/archlint/internal/coupling"
	"github.com/dusk-indust/archlint/internal/graph"
)

// ModuleRecords returns one graph store record per module, carrying its
// size and, when coupling ran, its coupling metrics. Without coupling
// results Ca and Ce come from the graph and the risk is zero.
func (r *Result) ModuleRecords() map[string]graph.ModuleRecord {
	out := make(map[string]graph.ModuleRecord, len(r.Files))
	for _, f := range r.Files {
		rec := graph.ModuleRecord{Path: f.Path, Language: f.Language, LOC: f.EndLine}
		if r.Graph != nil {
			if node, ok := r.Graph.Nodes[f.Path]; ok {
				rec.Ca = len(node.Dependents)
				rec.Ce = len(node.Dependencies)
			}
		}
		if r.Coupling != nil {
			if m, ok := r.Coupling.Module(f.Path); ok {
				applyMetrics(&rec, m)
			}
		}
		out[f.Path] = rec
	}
	return out
}

func applyMetrics(rec *graph.ModuleRecord, m coupling.ModuleMetrics) {
	rec.Ca = m.Ca
	rec.Ce = m.Ce
	rec.Instability = m.Instability
	rec.RiskScore = m.RiskScore
}
