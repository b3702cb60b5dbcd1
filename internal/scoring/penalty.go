package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dusk-indust/archlint/internal/rules"
)

// ErrInvalidInput is returned for arguments a calculation cannot use.
var ErrInvalidInput = errors.New("invalid input")

// topPerCategory is how many violations each CategoryScore keeps.
const topPerCategory = 5

var severityMultiplier = map[rules.Severity]float64{
	rules.SeverityCritical: 1.0,
	rules.SeverityWarning:  0.6,
	rules.SeverityInfo:     0.3,
}

// Impact labels a category penalty.
type Impact string

const (
	ImpactLow    Impact = "LOW"
	ImpactMedium Impact = "MEDIUM"
	ImpactHigh   Impact = "HIGH"
)

func impactFor(penalty float64) Impact {
	switch {
	case penalty >= 50:
		return ImpactHigh
	case penalty >= 20:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// CategoryScore is the penalty accumulated by one category.
type CategoryScore struct {
	Category      Category          `json:"category"`
	Penalty       float64           `json:"penalty"`
	Count         int               `json:"count"`
	Impact        Impact            `json:"impact"`
	TopViolations []rules.Violation `json:"topViolations"`
}

// ScoreBreakdown is the size-normalized penalty of a run.
type ScoreBreakdown struct {
	Categories          map[Category]*CategoryScore `json:"categories"`
	TotalPenalty        float64                     `json:"totalPenalty"`
	NormalizationFactor float64                     `json:"normalizationFactor"`
	NormalizedPenalty   float64                     `json:"normalizedPenalty"`
	TotalLOC            int                         `json:"totalLoc"`
}

// PenaltyCalculator weights violations by rule, severity and category.
type PenaltyCalculator struct {
	table RuleTable
}

// NewPenaltyCalculator returns a calculator reading metadata from table.
func NewPenaltyCalculator(table RuleTable) *PenaltyCalculator {
	return &PenaltyCalculator{table: table}
}

// Calculate computes the per-category and normalized penalty of violations
// for a project of totalLOC lines.
func (c *PenaltyCalculator) Calculate(violations []rules.Violation, totalLOC int) (*ScoreBreakdown, error) {
	if totalLOC < 1 {
		return nil, fmt.Errorf("total LOC must be at least 1, got %d: %w", totalLOC, ErrInvalidInput)
	}

	cats := make(map[Category]*CategoryScore, len(Categories))
	members := make(map[Category][]rules.Violation, len(Categories))
	for _, cat := range Categories {
		cats[cat] = &CategoryScore{Category: cat, TopViolations: []rules.Violation{}}
	}

	for _, v := range violations {
		meta := c.table.Lookup(v.ID())
		cs, ok := cats[meta.Category]
		if !ok {
			// A table entry with a category outside the four known ones.
			meta = unknownRule
			cs = cats[meta.Category]
		}
		cs.Penalty += float64(meta.Weight) * severityMultiplier[v.Severity] * categoryMultiplier[meta.Category]
		cs.Count++
		members[meta.Category] = append(members[meta.Category], v)
	}

	total := 0.0
	for _, cat := range Categories {
		cs := cats[cat]
		cs.Impact = impactFor(cs.Penalty)
		cs.TopViolations = c.topByWeight(members[cat])
		total += cs.Penalty
	}

	factor := NormalizationFactor(totalLOC)
	return &ScoreBreakdown{
		Categories:          cats,
		TotalPenalty:        total,
		NormalizationFactor: factor,
		NormalizedPenalty:   total * factor,
		TotalLOC:            totalLOC,
	}, nil
}

func (c *PenaltyCalculator) topByWeight(vs []rules.Violation) []rules.Violation {
	sorted := append([]rules.Violation{}, vs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.table.Lookup(sorted[i].ID()).Weight > c.table.Lookup(sorted[j].ID()).Weight
	})
	if len(sorted) > topPerCategory {
		sorted = sorted[:topPerCategory]
	}
	return sorted
}

// NormalizationFactor scales penalties by project size with a power law:
// small projects are not scaled, larger ones progressively less penalized
// per violation.
func NormalizationFactor(totalLOC int) float64 {
	loc := float64(totalLOC)
	switch {
	case totalLOC < 5000:
		return 1
	case totalLOC < 50000:
		return math.Pow(10000/loc, 0.3)
	case totalLOC < 200000:
		return math.Pow(10000/loc, 0.4)
	default:
		return math.Pow(10000/loc, 0.5)
	}
}
