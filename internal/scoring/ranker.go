package scoring

import (
	"sort"

	"github.com/dusk-indust/archlint/internal/rules"
)

// DefaultTopN is used when Rank is asked for a non-positive count.
const DefaultTopN = 5

// Rank returns the topN most severe violations: severity descending, then
// penalty descending, otherwise in input order. violations is not
// reordered.
func Rank(violations []rules.Violation, topN int) []rules.Violation {
	if topN <= 0 {
		topN = DefaultTopN
	}
	sorted := append([]rules.Violation{}, violations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].Severity.Rank(), sorted[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return sorted[i].Penalty > sorted[j].Penalty
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}

// SeverityCounts holds the number of violations per severity.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// Total returns the sum of all counts.
func (c SeverityCounts) Total() int {
	return c.Critical + c.Warning + c.Info
}

// Of returns the count for sev, zero for an unknown severity.
func (c SeverityCounts) Of(sev rules.Severity) int {
	switch sev {
	case rules.SeverityCritical:
		return c.Critical
	case rules.SeverityWarning:
		return c.Warning
	case rules.SeverityInfo:
		return c.Info
	default:
		return 0
	}
}

// CountBySeverity counts violations per severity. Unknown severities are
// not counted.
func CountBySeverity(violations []rules.Violation) SeverityCounts {
	var c SeverityCounts
	for _, v := range violations {
		switch v.Severity {
		case rules.SeverityCritical:
			c.Critical++
		case rules.SeverityWarning:
			c.Warning++
		case rules.SeverityInfo:
			c.Info++
		}
	}
	return c
}
