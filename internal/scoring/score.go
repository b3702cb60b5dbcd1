package scoring

import (
	"math"

	"github.com/dusk-indust/archlint/internal/rules"
)

// Status is the health band of a score.
type Status string

const (
	StatusExcellent      Status = "Excellent"
	StatusHealthy        Status = "Healthy"
	StatusNeedsAttention Status = "Needs Attention"
	StatusCritical       Status = "Critical"
)

// StatusFor maps a 0-100 score to its band.
func StatusFor(score int) Status {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 75:
		return StatusHealthy
	case score >= 60:
		return StatusNeedsAttention
	default:
		return StatusCritical
	}
}

// ScoreResult is the health score of a run. Breakdown is nil in degraded
// mode (unknown LOC).
type ScoreResult struct {
	Score     int             `json:"score"`
	Status    Status          `json:"status"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
}

// CalculateScore scores violations with DefaultRuleTable. See
// Scorer.Calculate.
func CalculateScore(violations []rules.Violation, totalModules, totalLOC int) (ScoreResult, error) {
	return NewScorer(DefaultRuleTable).Calculate(violations, totalModules, totalLOC)
}

// Scorer turns violations into a 0-100 health score.
type Scorer struct {
	penalties *PenaltyCalculator
}

// NewScorer returns a Scorer weighting rules with table.
func NewScorer(table RuleTable) *Scorer {
	return &Scorer{penalties: NewPenaltyCalculator(table)}
}

// Calculate scores violations. With a known totalLOC the size-normalized
// penalty is subtracted from 100; with totalLOC <= 0 the raw violation
// penalties are scaled by a module-count factor instead.
func (s *Scorer) Calculate(violations []rules.Violation, totalModules, totalLOC int) (ScoreResult, error) {
	if totalLOC > 0 {
		breakdown, err := s.penalties.Calculate(violations, totalLOC)
		if err != nil {
			return ScoreResult{}, err
		}
		score := clampScore(100 - breakdown.NormalizedPenalty)
		return ScoreResult{Score: score, Status: StatusFor(score), Breakdown: breakdown}, nil
	}

	raw := 0.0
	for _, v := range violations {
		raw += v.Penalty
	}
	score := clampScore(100 - raw/degradedFactor(len(violations), totalModules))
	return ScoreResult{Score: score, Status: StatusFor(score)}, nil
}

// degradedFactor scales raw penalties when LOC is unknown. It is never
// below 1.
func degradedFactor(count, modules int) float64 {
	var f float64
	switch {
	case modules <= 100:
		density := float64(count) / float64(max(1, modules)) * 2
		f = 1 + math.Min(density, 8)
	case modules <= 200:
		f = float64(modules) / 50
	default:
		f = 4 + float64(modules-200)/100
	}
	return math.Max(f, 1)
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
