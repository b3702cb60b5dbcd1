package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/coupling"
	"github.com/dusk-indust/archlint/internal/rules"
	"github.com/dusk-indust/archlint/internal/scoring"
)

// textStyles is the palette of the terminal report. Colors degrade to
// plain text when the writer is not a terminal.
type textStyles struct {
	title    lipgloss.Style
	section  lipgloss.Style
	dim      lipgloss.Style
	critical lipgloss.Style
	warning  lipgloss.Style
	info     lipgloss.Style
	good     lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:    r.NewStyle().Bold(true),
		section:  r.NewStyle().Bold(true).Underline(true),
		dim:      r.NewStyle().Faint(true),
		critical: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("11")),
		info:     r.NewStyle().Foreground(lipgloss.Color("12")),
		good:     r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
}

func (s textStyles) severity(sev rules.Severity) lipgloss.Style {
	switch sev {
	case rules.SeverityCritical:
		return s.critical
	case rules.SeverityWarning:
		return s.warning
	default:
		return s.info
	}
}

func (s textStyles) status(st scoring.Status) lipgloss.Style {
	switch st {
	case scoring.StatusExcellent, scoring.StatusHealthy:
		return s.good
	case scoring.StatusNeedsAttention:
		return s.warning
	default:
		return s.critical
	}
}

// WriteText writes a human-readable summary of res.
func WriteText(w io.Writer, res *analyzer.Result) error {
	st := newTextStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n",
		st.title.Render("Architecture score:"),
		st.status(res.Status).Render(fmt.Sprintf("%d/100 (%s)", res.Score, res.Status)))
	c := res.SeverityCounts
	counts := make([]string, 0, len(rules.Severities))
	for _, sev := range rules.Severities {
		counts = append(counts, st.severity(sev).Render(fmt.Sprintf("%d %s", c.Of(sev), sev)))
	}
	fmt.Fprintf(&b, "Modules: %d  LOC: %d  Violations: %d (%s)\n",
		res.TotalModules, res.TotalLOC, c.Total(), strings.Join(counts, ", "))

	if len(res.TopRisks) > 0 {
		b.WriteString("\n" + st.section.Render("Top risks") + "\n")
		for _, v := range res.TopRisks {
			fmt.Fprintf(&b, "  %s %-22s %s:%d  %s\n",
				st.severity(v.Severity).Render(fmt.Sprintf("%-8s", strings.ToUpper(string(v.Severity)))),
				v.ID(), v.File, v.Line, v.Message)
			if v.SuggestedFix != "" {
				fmt.Fprintf(&b, "           %s\n", st.dim.Render("fix: "+v.SuggestedFix))
			}
		}
	}

	if bd := res.Breakdown; bd != nil {
		b.WriteString("\n" + st.section.Render("Penalty by category") + "\n")
		for _, cat := range scoring.Categories {
			cs := bd.Categories[cat]
			if cs == nil || cs.Count == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %-11s %7.1f  %-6s (%d)\n", cat, cs.Penalty, cs.Impact, cs.Count)
		}
		fmt.Fprintf(&b, "  %s\n", st.dim.Render(fmt.Sprintf(
			"total %.1f / factor %.2f = %.1f", bd.TotalPenalty, bd.NormalizationFactor, bd.NormalizedPenalty)))
	}

	if cp := res.Coupling; cp != nil && len(cp.Modules) > 0 {
		b.WriteString("\n" + st.section.Render("Coupling") + "\n")
		fmt.Fprintf(&b, "  overall risk %.1f  avg Ca %.2f  avg Ce %.2f  avg I %.2f\n",
			cp.OverallRisk, cp.AverageCa, cp.AverageCe, cp.AverageInstability)
		writeWatchList(&b, st, "high risk", cp.HighRiskModules, func(m coupling.ModuleMetrics) string {
			return fmt.Sprintf("risk %.1f", m.RiskScore)
		})
		writeWatchList(&b, st, "hubs", cp.HubModules, func(m coupling.ModuleMetrics) string {
			return fmt.Sprintf("ca %d", m.Ca)
		})
		writeWatchList(&b, st, "unstable", cp.UnstableModules, func(m coupling.ModuleMetrics) string {
			return fmt.Sprintf("I %.2f", m.Instability)
		})
	}

	if len(res.RuleErrors) > 0 {
		b.WriteString("\n" + st.section.Render("Rule errors") + "\n")
		for _, e := range res.RuleErrors {
			fmt.Fprintf(&b, "  %s: %s\n", st.critical.Render(e.Rule), e.Error)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeWatchList(b *strings.Builder, st textStyles, title string, ms []coupling.ModuleMetrics, detail func(coupling.ModuleMetrics) string) {
	if len(ms) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s\n", title)
	for _, m := range ms {
		fmt.Fprintf(b, "    %s %s\n", m.Path, st.dim.Render("("+detail(m)+")"))
	}
}
