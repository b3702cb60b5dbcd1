package rules

import (
	"strings"
	"unicode"
)

// Severity grades a violation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Severities lists all severities from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityWarning, SeverityInfo}

// Rank orders severities: critical > warning > info. Unknown values rank
// below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Violation is one finding emitted by a detector. It is a value and is not
// modified after the detector returns it.
type Violation struct {
	Rule         string   `json:"rule"` // human-readable; see RuleID
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	File         string   `json:"file"`
	RelatedFile  string   `json:"relatedFile,omitempty"`
	Line         int      `json:"line"`
	Impact       string   `json:"impact"`
	SuggestedFix string   `json:"suggestedFix"`
	Penalty      float64  `json:"penalty"`
}

// ID returns the machine rule id of the violation.
func (v Violation) ID() string {
	return RuleID(v.Rule)
}

// RuleID derives the machine id of a human rule name: lower-cased, with
// each run of spaces, underscores or hyphens collapsed to one hyphen.
// "Circular Deps" and "circular_deps" both become "circular-deps".
func RuleID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
