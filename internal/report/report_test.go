package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/coupling"
	"github.com/dusk-indust/archlint/internal/graph"
	"github.com/dusk-indust/archlint/internal/rules"
	"github.com/dusk-indust/archlint/internal/scoring"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type mapResolver struct{}

func (mapResolver) IsLocal(string, graph.Language) bool { return true }
func (mapResolver) Resolve(spec, _ string, _ graph.Language) (string, bool) {
	return spec, true
}

func testGraph() *graph.DependencyGraph {
	return graph.Build([]graph.ModuleSpec{
		{Path: "main.go", Imports: []string{"svc/a.go"}},
		{Path: "svc/a.go", Imports: []string{"svc/b.go"}},
		{Path: "svc/b.go", Imports: []string{"svc/a.go"}},
	}, mapResolver{})
}

func testResult(t *testing.T) *analyzer.Result {
	t.Helper()
	vs := []rules.Violation{
		{Rule: "Circular Deps", Severity: rules.SeverityCritical, File: "svc/a.go", Line: 1,
			Message: "Circular dependency: svc/a.go -> svc/b.go -> svc/a.go", Penalty: 10,
			SuggestedFix: "Extract the shared code"},
		{Rule: "Long Function", Severity: rules.SeverityInfo, File: "main.go", Line: 3,
			Message: "Function main has 90 lines (max 60)", Penalty: 2},
	}
	score, err := scoring.CalculateScore(vs, 3, 300)
	require.NoError(t, err)
	g := testGraph()
	return &analyzer.Result{
		Violations:     vs,
		Score:          score.Score,
		Status:         score.Status,
		SeverityCounts: scoring.CountBySeverity(vs),
		TopRisks:       scoring.Rank(vs, 5),
		Breakdown:      score.Breakdown,
		Coupling:       coupling.Analyze(g, vs),
		RuleErrors:     []rules.RuleError{{Rule: "Broken", Error: "boom"}},
		TotalModules:   3,
		TotalLOC:       300,
		Cycles:         g.Cycles,
		Timestamp:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Graph:          g,
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testResult(t)))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"violations", "score", "status", "severityCounts", "topRisks",
		"breakdown", "coupling", "ruleErrors", "totalModules", "totalLoc", "cycles", "timestamp"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "Graph")
	assert.Equal(t, "2026-01-01T00:00:00Z", doc["timestamp"])
	assert.Equal(t, map[string]any{"critical": 1.0, "warning": 0.0, "info": 1.0}, doc["severityCounts"])
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func TestWriteText(t *testing.T) {
	res := testResult(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Architecture score:")
	assert.Contains(t, out, string(res.Status))
	assert.Contains(t, out, "Violations: 2 (1 critical, 0 warning, 1 info)")
	assert.Contains(t, out, "circular-deps")
	assert.Contains(t, out, "svc/a.go:1")
	assert.Contains(t, out, "fix: Extract the shared code")
	assert.Contains(t, out, "structural")
	assert.Contains(t, out, "Rule errors")
	assert.Contains(t, out, "Broken: boom")
	assert.NotContains(t, out, "\x1b[", "no escape codes outside a terminal")
}

func TestWriteText_Clean(t *testing.T) {
	res := &analyzer.Result{Score: 100, Status: scoring.StatusExcellent}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res))
	assert.Contains(t, buf.String(), "100/100 (Excellent)")
	assert.NotContains(t, buf.String(), "Top risks")
	assert.NotContains(t, buf.String(), "Coupling")
}

// ---------------------------------------------------------------------------
// Mermaid
// ---------------------------------------------------------------------------

func TestMermaid(t *testing.T) {
	want := `graph TD
  N0["main.go"]
  subgraph D1["svc"]
    N1["a.go"]
    N2["b.go"]
  end
  N0 --> N1
  N1 --> N2
  N2 --> N1
  linkStyle 1,2 stroke:#d33,stroke-width:2px
`
	assert.Equal(t, want, Mermaid(testGraph()))
}

func TestMermaid_Empty(t *testing.T) {
	assert.Equal(t, "graph TD\n", Mermaid(nil))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "say #quot;hi#quot;", label(`say "hi"`))
}

func TestMermaid_LongDirectoryKeepsEntitiesWhole(t *testing.T) {
	dir := strings.Repeat("d", 38) + `"quoted"`
	g := graph.Build([]graph.ModuleSpec{{Path: dir + "/x.go", Language: graph.LangGo}}, mapResolver{})

	out := Mermaid(g)
	assert.Contains(t, out, `subgraph D0["`+strings.Repeat("d", 38)+`#quot;q"]`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "héé", truncate("hééllo", 3))
}
