package rules

import "fmt"

// LargeFile flags modules longer than maxFileLines (default 500).
type LargeFile struct{}

func (LargeFile) Name() string       { return "Large File" }
func (LargeFile) Severity() Severity { return SeverityWarning }
func (LargeFile) Penalty() float64   { return 4 }

func (r LargeFile) Check(ctx *Context) ([]Violation, error) {
	limit := ctx.Config.Int("maxFileLines", 500)
	var out []Violation
	for _, f := range ctx.Files {
		if f.EndLine <= limit {
			continue
		}
		v := newViolation(r, f.Path, 1, fmt.Sprintf("File has %d lines (max %d)", f.EndLine, limit))
		v.Impact = "Large modules accumulate unrelated responsibilities and attract merge conflicts"
		v.SuggestedFix = "Split the file along its responsibilities"
		out = append(out, v)
	}
	return out, nil
}

// LongFunction flags functions longer than maxFunctionLines (default 60).
type LongFunction struct{}

func (LongFunction) Name() string       { return "Long Function" }
func (LongFunction) Severity() Severity { return SeverityInfo }
func (LongFunction) Penalty() float64   { return 2 }

func (r LongFunction) Check(ctx *Context) ([]Violation, error) {
	limit := ctx.Config.Int("maxFunctionLines", 60)
	var out []Violation
	for _, f := range ctx.Files {
		for _, fn := range f.Functions {
			if fn.Lines() <= limit {
				continue
			}
			v := newViolation(r, f.Path, fn.StartLine,
				fmt.Sprintf("Function %s spans %d lines (max %d)", fn.Name, fn.Lines(), limit))
			v.Impact = "Long functions are hard to read and to test in isolation"
			v.SuggestedFix = "Extract cohesive blocks into named helpers"
			out = append(out, v)
		}
	}
	return out, nil
}
