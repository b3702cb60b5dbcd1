// Package coupling scores modules by how dangerous they are to change,
// from their afferent/efferent coupling and the structural violations they
// take part in.
package coupling

import (
	"math"
	"sort"
	"strings"

	"github.com/dusk-indust/archlint/internal/graph"
	"github.com/dusk-indust/archlint/internal/rules"
)

// Watch-list limits.
const (
	highRiskThreshold    = 50.0
	unstableThreshold    = 0.75
	maxHighRiskModules   = 10
	maxHubModules        = 5
	maxUnstableModules   = 5
	thresholdPercentile  = 0.90
	riskNormalizeDivisor = 10.0
)

// ModuleMetrics are the coupling metrics of one module.
type ModuleMetrics struct {
	Path            string  `json:"path"`
	Ca              int     `json:"ca"`
	Ce              int     `json:"ce"`
	Instability     float64 `json:"instability"`
	CycleCount      int     `json:"cycleCount"`
	LayerViolations int     `json:"layerViolations"`
	RiskScore       float64 `json:"riskScore"`
}

// Analysis is the project-wide coupling picture of one run.
type Analysis struct {
	Modules            []ModuleMetrics `json:"modules"` // sorted by path
	AverageCa          float64         `json:"averageCa"`
	AverageCe          float64         `json:"averageCe"`
	AverageInstability float64         `json:"averageInstability"`
	CaThreshold        int             `json:"caThreshold"`
	CeThreshold        int             `json:"ceThreshold"`
	HighRiskModules    []ModuleMetrics `json:"highRiskModules"`
	HubModules         []ModuleMetrics `json:"hubModules"`
	UnstableModules    []ModuleMetrics `json:"unstableModules"`
	OverallRisk        float64         `json:"overallRisk"`
}

// Module returns the metrics of path.
func (a *Analysis) Module(path string) (ModuleMetrics, bool) {
	i := sort.Search(len(a.Modules), func(i int) bool { return a.Modules[i].Path >= path })
	if i < len(a.Modules) && a.Modules[i].Path == path {
		return a.Modules[i], true
	}
	return ModuleMetrics{}, false
}

// Analyze computes coupling metrics, risk scores and watch-lists for every
// module of g. violations supply cycle and layer participation.
func Analyze(g *graph.DependencyGraph, violations []rules.Violation) *Analysis {
	a := &Analysis{
		Modules:         []ModuleMetrics{},
		HighRiskModules: []ModuleMetrics{},
		HubModules:      []ModuleMetrics{},
		UnstableModules: []ModuleMetrics{},
	}
	if g == nil || len(g.Nodes) == 0 {
		return a
	}

	var cycleVs, layerVs []rules.Violation
	for _, v := range violations {
		switch v.ID() {
		case rules.CircularDepsID:
			cycleVs = append(cycleVs, v)
		case rules.LayerViolationID:
			layerVs = append(layerVs, v)
		}
	}

	paths := g.Paths()
	metrics := make([]ModuleMetrics, 0, len(paths))
	cas := make([]int, 0, len(paths))
	ces := make([]int, 0, len(paths))
	var sumCa, sumCe, sumI float64

	for _, p := range paths {
		node := g.Nodes[p]
		m := ModuleMetrics{
			Path: p,
			Ca:   len(node.Dependents),
			Ce:   len(node.Dependencies),
		}
		if m.Ca+m.Ce > 0 {
			m.Instability = float64(m.Ce) / float64(m.Ca+m.Ce)
		}
		for _, v := range cycleVs {
			// A module named anywhere in the cycle path participates.
			if v.File == p || strings.Contains(v.Message, p) {
				m.CycleCount++
			}
		}
		for _, v := range layerVs {
			if v.File == p {
				m.LayerViolations++
			}
		}

		metrics = append(metrics, m)
		cas = append(cas, m.Ca)
		ces = append(ces, m.Ce)
		sumCa += float64(m.Ca)
		sumCe += float64(m.Ce)
		sumI += m.Instability
	}

	n := float64(len(metrics))
	a.AverageCa = sumCa / n
	a.AverageCe = sumCe / n
	a.AverageInstability = sumI / n
	a.CaThreshold = percentile(cas, thresholdPercentile)
	a.CeThreshold = percentile(ces, thresholdPercentile)

	var weighted, weights float64
	for i := range metrics {
		m := &metrics[i]
		m.RiskScore = riskScore(*m, a.CaThreshold, a.CeThreshold)
		w := float64(max(m.Ca, 1))
		weighted += m.RiskScore * w
		weights += w
	}
	a.OverallRisk = math.Min(100, weighted/weights)
	a.Modules = metrics

	a.HighRiskModules = watchList(metrics, maxHighRiskModules,
		func(m ModuleMetrics) bool { return m.RiskScore >= highRiskThreshold },
		func(x, y ModuleMetrics) bool { return x.RiskScore > y.RiskScore })
	a.HubModules = watchList(metrics, maxHubModules,
		func(m ModuleMetrics) bool { return m.Ca >= a.CaThreshold && m.Ca > 0 },
		func(x, y ModuleMetrics) bool { return x.Ca > y.Ca })
	a.UnstableModules = watchList(metrics, maxUnstableModules,
		func(m ModuleMetrics) bool { return m.Instability >= unstableThreshold && m.Ca > 0 },
		func(x, y ModuleMetrics) bool { return x.Instability > y.Instability })

	return a
}

// riskScore applies the compounding risk terms in order and normalizes to
// 0-100.
func riskScore(m ModuleMetrics, caT, ceT int) float64 {
	risk := float64(m.Ca) * 5
	if m.Ce >= ceT {
		risk += float64(m.Ce) * 2.0
	}
	if m.Ca >= caT {
		risk += m.Instability * 20
	}
	if m.CycleCount > 0 {
		risk *= 1 + float64(m.CycleCount)*2.5
	}
	risk += float64(m.LayerViolations) * 3.0 * 5
	if m.Ca >= caT {
		risk *= 1.5
	}
	return math.Min(100, risk/riskNormalizeDivisor)
}

// percentile returns the nearest-rank percentile of values.
func percentile(values []int, p float64) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// watchList filters metrics, orders by less (ties by path, which is the
// input order) and caps the result.
func watchList(metrics []ModuleMetrics, limit int, keep func(ModuleMetrics) bool, less func(x, y ModuleMetrics) bool) []ModuleMetrics {
	out := []ModuleMetrics{}
	for _, m := range metrics {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
