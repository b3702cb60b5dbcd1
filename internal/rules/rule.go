package rules

import (
	"github.com/dusk-indust/archlint/internal/config"
	"github.com/dusk-indust/archlint/internal/graph"
)

// Rule is a detector. Check must treat ctx as read-only: the same Context
// is shared by every rule of a run, possibly concurrently.
type Rule interface {
	// Name is the human-readable rule name; RuleID(Name()) is its id.
	Name() string
	Severity() Severity
	// Penalty is the default penalty assigned to each violation.
	Penalty() float64
	Check(ctx *Context) ([]Violation, error)
}

// Context is the read-only input bundle handed to every rule.
type Context struct {
	Files    []graph.SourceFile
	Graph    *graph.DependencyGraph
	Config   config.Options
	RootPath string
}

// RuleError records a detector that failed or panicked. The run continues
// without its violations.
type RuleError struct {
	Rule  string `json:"rule"`
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

// newViolation fills the fields every built-in rule sets the same way.
func newViolation(r Rule, file string, line int, msg string) Violation {
	if line < 1 {
		line = 1
	}
	return Violation{
		Rule:     r.Name(),
		Severity: r.Severity(),
		Message:  msg,
		File:     file,
		Line:     line,
		Penalty:  r.Penalty(),
	}
}
