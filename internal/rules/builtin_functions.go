package rules

import "fmt"

// LongParameterList flags functions with more than maxParams (default 5)
// parameters.
type LongParameterList struct{}

func (LongParameterList) Name() string       { return "Long Parameter List" }
func (LongParameterList) Severity() Severity { return SeverityWarning }
func (LongParameterList) Penalty() float64   { return 3 }

func (r LongParameterList) Check(ctx *Context) ([]Violation, error) {
	limit := ctx.Config.Int("maxParams", 5)
	var out []Violation
	for _, f := range ctx.Files {
		for _, fn := range f.Functions {
			if fn.Params <= limit {
				continue
			}
			v := newViolation(r, f.Path, fn.StartLine,
				fmt.Sprintf("Function %s takes %d parameters (max %d)", fn.Name, fn.Params, limit))
			v.Impact = "Callers must know too much; parameter order mistakes go unnoticed"
			v.SuggestedFix = "Group related parameters into a struct or options value"
			out = append(out, v)
		}
	}
	return out, nil
}

// HighComplexity flags functions whose cyclomatic complexity exceeds
// maxComplexity (default 10). Beyond twice the limit it is critical.
type HighComplexity struct{}

func (HighComplexity) Name() string       { return "High Complexity" }
func (HighComplexity) Severity() Severity { return SeverityWarning }
func (HighComplexity) Penalty() float64   { return 5 }

func (r HighComplexity) Check(ctx *Context) ([]Violation, error) {
	limit := ctx.Config.Int("maxComplexity", 10)
	var out []Violation
	for _, f := range ctx.Files {
		for _, fn := range f.Functions {
			if fn.Complexity <= limit {
				continue
			}
			v := newViolation(r, f.Path, fn.StartLine,
				fmt.Sprintf("Function %s has cyclomatic complexity %d (max %d)", fn.Name, fn.Complexity, limit))
			if fn.Complexity > 2*limit {
				v.Severity = SeverityCritical
				v.Penalty = 2 * r.Penalty()
			}
			v.Impact = "Every extra branch is another path to test and another place for bugs to hide"
			v.SuggestedFix = "Replace conditionals with early returns, lookup tables or smaller functions"
			out = append(out, v)
		}
	}
	return out, nil
}

// DeepNesting flags functions nesting control flow deeper than maxNesting
// (default 4).
type DeepNesting struct{}

func (DeepNesting) Name() string       { return "Deep Nesting" }
func (DeepNesting) Severity() Severity { return SeverityWarning }
func (DeepNesting) Penalty() float64   { return 3 }

func (r DeepNesting) Check(ctx *Context) ([]Violation, error) {
	limit := ctx.Config.Int("maxNesting", 4)
	var out []Violation
	for _, f := range ctx.Files {
		for _, fn := range f.Functions {
			if fn.MaxNesting <= limit {
				continue
			}
			v := newViolation(r, f.Path, fn.StartLine,
				fmt.Sprintf("Function %s nests control flow %d levels deep (max %d)", fn.Name, fn.MaxNesting, limit))
			v.Impact = "Deeply nested code hides the conditions under which each statement runs"
			v.SuggestedFix = "Invert conditions into guard clauses and extract inner loops"
			out = append(out, v)
		}
	}
	return out, nil
}
