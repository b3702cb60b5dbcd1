package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archlint/internal/rules"
)

func violation(rule string, sev rules.Severity, penalty float64) rules.Violation {
	return rules.Violation{Rule: rule, Severity: sev, File: "a.go", Line: 1, Penalty: penalty}
}

func TestCalculate_EmptyInput(t *testing.T) {
	b, err := NewPenaltyCalculator(DefaultRuleTable).Calculate(nil, 1000)
	require.NoError(t, err)

	assert.Zero(t, b.TotalPenalty)
	assert.Zero(t, b.NormalizedPenalty)
	require.Len(t, b.Categories, 4)
	for _, cat := range Categories {
		cs := b.Categories[cat]
		require.NotNil(t, cs)
		assert.Zero(t, cs.Penalty)
		assert.Equal(t, ImpactLow, cs.Impact)
		assert.NotNil(t, cs.TopViolations)
		assert.Empty(t, cs.TopViolations)
	}
}

func TestCalculate_InvalidLOC(t *testing.T) {
	for _, loc := range []int{0, -5} {
		_, err := NewPenaltyCalculator(DefaultRuleTable).Calculate(nil, loc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestCalculate_Weights(t *testing.T) {
	vs := []rules.Violation{
		violation("Circular Deps", rules.SeverityCritical, 10), // 10 * 1.0 * 1.2 = 12
		violation("Large File", rules.SeverityWarning, 4),      // 4 * 0.6 * 1.0 = 2.4
		violation("Long Function", rules.SeverityInfo, 2),      // 3 * 0.3 * 0.8 = 0.72
		violation("Mystery Rule", rules.SeverityCritical, 1),   // 1 * 1.0 * 0.5 = 0.5
	}
	b, err := NewPenaltyCalculator(DefaultRuleTable).Calculate(vs, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 12.0, b.Categories[CategoryStructural].Penalty, 1e-9)
	assert.InDelta(t, 2.4, b.Categories[CategoryDesign].Penalty, 1e-9)
	assert.InDelta(t, 0.72, b.Categories[CategoryComplexity].Penalty, 1e-9)
	assert.InDelta(t, 0.5, b.Categories[CategoryHygiene].Penalty, 1e-9)
	assert.Equal(t, 1, b.Categories[CategoryHygiene].Count)
	assert.InDelta(t, 15.62, b.TotalPenalty, 1e-9)
	assert.InDelta(t, 1.0, b.NormalizationFactor, 1e-9)
	assert.InDelta(t, 15.62, b.NormalizedPenalty, 1e-9)
	assert.Equal(t, 1000, b.TotalLOC)
}

func TestCalculate_ImpactLabels(t *testing.T) {
	tests := []struct {
		n    int
		want Impact
	}{
		{1, ImpactLow},    // 12
		{2, ImpactMedium}, // 24
		{4, ImpactMedium}, // 48
		{5, ImpactHigh},   // 60
	}
	for _, tt := range tests {
		vs := make([]rules.Violation, tt.n)
		for i := range vs {
			vs[i] = violation("circular-deps", rules.SeverityCritical, 10)
		}
		b, err := NewPenaltyCalculator(DefaultRuleTable).Calculate(vs, 100)
		require.NoError(t, err)
		assert.Equal(t, tt.want, b.Categories[CategoryStructural].Impact, "n=%d", tt.n)
	}
	assert.Equal(t, ImpactHigh, impactFor(50))
	assert.Equal(t, ImpactMedium, impactFor(20))
	assert.Equal(t, ImpactLow, impactFor(19.99))
}

func TestCalculate_TopViolationsByWeight(t *testing.T) {
	var vs []rules.Violation
	for i := 0; i < 4; i++ {
		vs = append(vs, violation("long-function", rules.SeverityInfo, 1))
	}
	vs = append(vs,
		violation("deep-nesting", rules.SeverityWarning, 1),
		violation("high-complexity", rules.SeverityWarning, 1),
		violation("deep-nesting", rules.SeverityWarning, 1),
	)

	b, err := NewPenaltyCalculator(DefaultRuleTable).Calculate(vs, 100)
	require.NoError(t, err)

	top := b.Categories[CategoryComplexity].TopViolations
	require.Len(t, top, 5)
	var ids []string
	for _, v := range top {
		ids = append(ids, v.ID())
	}
	assert.Equal(t, []string{"high-complexity", "deep-nesting", "deep-nesting", "long-function", "long-function"}, ids)
	assert.Equal(t, 7, b.Categories[CategoryComplexity].Count)
	assert.Equal(t, "long-function", vs[0].ID(), "input is not reordered")
}

func TestNormalizationFactor(t *testing.T) {
	tests := []struct {
		loc  int
		want float64
	}{
		{1, 1},
		{4999, 1},
		{5000, 1.2311444133449163}, // (10000/5000)^0.3
		{10000, 1},                 // (1)^0.3
		{49999, 0.6170},            // (0.2)^0.3
		{50000, 0.5253},            // (0.2)^0.4
		{100000, 0.3981},           // (0.1)^0.4
		{200000, 0.2236},           // (0.05)^0.5
		{1000000, 0.1},             // (0.01)^0.5
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizationFactor(tt.loc), 1e-3, "loc=%d", tt.loc)
	}
}

func TestRuleTable_Lookup(t *testing.T) {
	assert.Equal(t, RuleMeta{Weight: 10, Category: CategoryStructural}, DefaultRuleTable.Lookup("circular-deps"))
	assert.Equal(t, RuleMeta{Weight: 1, Category: CategoryHygiene}, DefaultRuleTable.Lookup("not-a-rule"))

	src := map[string]RuleMeta{"x": {Weight: 2, Category: CategoryDesign}}
	table := NewRuleTable(src)
	src["x"] = RuleMeta{Weight: 99}
	assert.Equal(t, 2, table.Lookup("x").Weight, "table is a copy")
}
