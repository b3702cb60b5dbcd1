package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archlint/internal/rules"
)

func TestCalculateScore_NoViolations(t *testing.T) {
	for _, loc := range []int{0, 1, 120000} {
		res, err := CalculateScore(nil, 10, loc)
		require.NoError(t, err)
		assert.Equal(t, 100, res.Score)
		assert.Equal(t, StatusExcellent, res.Status)
	}
}

func TestCalculateScore_WithLOC(t *testing.T) {
	vs := []rules.Violation{
		violation("circular-deps", rules.SeverityCritical, 10), // 12
		violation("large-file", rules.SeverityWarning, 4),      // 2.4
	}
	res, err := CalculateScore(vs, 5, 1000)
	require.NoError(t, err)
	assert.Equal(t, 86, res.Score) // round(100 - 14.4)
	assert.Equal(t, StatusHealthy, res.Status)
	require.NotNil(t, res.Breakdown)
	assert.InDelta(t, 14.4, res.Breakdown.NormalizedPenalty, 1e-9)
}

func TestCalculateScore_ClampedAtZero(t *testing.T) {
	vs := make([]rules.Violation, 1000)
	for i := range vs {
		vs[i] = violation("circular-deps", rules.SeverityCritical, 10)
	}

	res, err := CalculateScore(vs, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, StatusCritical, res.Status)

	res, err = CalculateScore(vs, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Nil(t, res.Breakdown)
}

func TestCalculateScore_Degraded(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		penalty float64
		modules int
		want    int
	}{
		// factor = 1 + min(2/10*2, 8) = 1.4; raw 20 -> 100 - 14.29
		{"small project", 2, 10, 10, 86},
		// factor = 1 + min(50/1*2, 8) = 9; raw 50 -> 100 - 5.56
		{"density capped", 50, 1, 1, 94},
		// factor = 150/50 = 3; raw 30 -> 90
		{"medium project", 3, 10, 150, 90},
		// factor = 4 + 100/100 = 5; raw 100 -> 80
		{"large project", 10, 10, 300, 80},
		// zero modules: factor = 1 + min(1/1*2, 8) = 3; raw 9 -> 97
		{"zero modules", 1, 9, 0, 97},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := make([]rules.Violation, tt.count)
			for i := range vs {
				vs[i] = violation("anything", rules.SeverityWarning, tt.penalty)
			}
			res, err := CalculateScore(vs, tt.modules, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Score)
		})
	}
}

func TestDegradedFactor_FloorsAtOne(t *testing.T) {
	assert.InDelta(t, 1.0, degradedFactor(0, 50), 1e-9)
	assert.InDelta(t, 2.02, degradedFactor(0, 101), 1e-9)
	assert.InDelta(t, 4.0, degradedFactor(0, 200), 1e-9)
	assert.GreaterOrEqual(t, degradedFactor(0, 0), 1.0)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  Status
	}{
		{100, StatusExcellent},
		{90, StatusExcellent},
		{89, StatusHealthy},
		{75, StatusHealthy},
		{74, StatusNeedsAttention},
		{60, StatusNeedsAttention},
		{59, StatusCritical},
		{0, StatusCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.score), "score=%d", tt.score)
	}
}
