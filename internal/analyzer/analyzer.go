// Package analyzer runs one architecture analysis: load sources, build the
// dependency graph, run the detectors in isolation, then score, rank and
// compute coupling risk.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/archlint/internal/config"
	"github.com/dusk-indust/archlint/internal/coupling"
	"github.com/dusk-indust/archlint/internal/graph"
	"github.com/dusk-indust/archlint/internal/observability"
	"github.com/dusk-indust/archlint/internal/rules"
	"github.com/dusk-indust/archlint/internal/scoring"
)

// Result is the outcome of one analysis run.
type Result struct {
	Violations     []rules.Violation       `json:"violations"`
	Score          int                     `json:"score"`
	Status         scoring.Status          `json:"status"`
	SeverityCounts scoring.SeverityCounts  `json:"severityCounts"`
	TopRisks       []rules.Violation       `json:"topRisks"`
	Breakdown      *scoring.ScoreBreakdown `json:"breakdown,omitempty"`
	Coupling       *coupling.Analysis      `json:"coupling,omitempty"`
	RuleErrors     []rules.RuleError       `json:"ruleErrors"`
	TotalModules   int                     `json:"totalModules"`
	TotalLOC       int                     `json:"totalLoc"`
	Cycles         [][]string              `json:"cycles"`
	Timestamp      time.Time               `json:"timestamp"`

	// Graph and Files are the inputs the run was computed from.
	Graph *graph.DependencyGraph `json:"-"`
	Files []graph.SourceFile     `json:"-"`
}

// Analyzer wires the loader, detectors and scorers together. It holds no
// per-run state and is safe for concurrent use.
type Analyzer struct {
	parser   graph.Parser
	registry *rules.Registry
	scorer   *scoring.Scorer
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithTracer sets the tracer spans are opened on. Defaults to the global
// provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(a *Analyzer) { a.tracer = t }
}

// WithParser sets the parser used by Analyze. Defaults to tree-sitter.
func WithParser(p graph.Parser) Option {
	return func(a *Analyzer) { a.parser = p }
}

// WithRegistry replaces the built-in detectors.
func WithRegistry(r *rules.Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithRuleTable sets the rule weights used for scoring.
func WithRuleTable(t scoring.RuleTable) Option {
	return func(a *Analyzer) { a.scorer = scoring.NewScorer(t) }
}

// WithClock sets the source of Result.Timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New returns an Analyzer with the built-in detectors and rule table.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: rules.DefaultRegistry(),
		scorer:   scoring.NewScorer(scoring.DefaultRuleTable),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.parser == nil {
		a.parser = graph.NewTreeSitterParser()
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(observability.TracerName)
	}
	return a
}

// Close releases the parser.
func (a *Analyzer) Close() error {
	return a.parser.Close()
}

// Analyze loads every supported source file under root and analyzes it.
// A nil cfg is the zero configuration.
func (a *Analyzer) Analyze(ctx context.Context, root string, cfg *config.ProjectConfig) (*Result, error) {
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}
	ctx, span := a.tracer.Start(ctx, observability.SpanAnalyze,
		trace.WithAttributes(attribute.String("archlint.root", root)))
	defer span.End()

	files, err := a.load(ctx, root, cfg)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	res, err := a.analyzeFiles(ctx, root, files, cfg)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("archlint.modules", res.TotalModules),
		attribute.Int("archlint.violations", len(res.Violations)),
		attribute.Int("archlint.score", res.Score),
	)
	return res, nil
}

// AnalyzeFiles analyzes already-parsed files without touching the
// filesystem. root is only recorded in the detector context and used to
// locate go.mod for Go import resolution.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, root string, files []graph.SourceFile, cfg *config.ProjectConfig) (*Result, error) {
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}
	ctx, span := a.tracer.Start(ctx, observability.SpanAnalyze)
	defer span.End()

	res, err := a.analyzeFiles(ctx, root, files, cfg)
	if err != nil {
		observability.RecordError(span, err)
	}
	return res, err
}

func (a *Analyzer) load(ctx context.Context, root string, cfg *config.ProjectConfig) ([]graph.SourceFile, error) {
	ctx, span := a.tracer.Start(ctx, observability.SpanLoad)
	defer span.End()

	langs := make([]graph.Language, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		langs = append(langs, graph.Language(l))
	}
	ld := graph.NewLoader(a.parser,
		graph.WithLoaderLogger(a.logger),
		graph.WithExclude(cfg.Exclude...),
		graph.WithLanguages(langs...),
	)
	files, err := ld.Load(ctx, root)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("load %s: %w", root, err)
	}
	span.SetAttributes(attribute.Int("archlint.files", len(files)))
	return files, nil
}

func (a *Analyzer) analyzeFiles(ctx context.Context, root string, files []graph.SourceFile, cfg *config.ProjectConfig) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := a.buildGraph(ctx, root, files)

	rctx := &rules.Context{
		Files:    files,
		Graph:    g,
		Config:   cfg.Rules,
		RootPath: root,
	}
	registry := a.registry.Without(cfg.DisabledRules...)

	var (
		violations []rules.Violation
		ruleErrs   []rules.RuleError
		err        error
	)
	if cfg.ParallelRules {
		violations, ruleErrs, err = a.runParallel(ctx, registry.Rules(), rctx)
	} else {
		violations, ruleErrs, err = a.runSequential(ctx, registry.Rules(), rctx)
	}
	if err != nil {
		return nil, err
	}

	totalLOC := 0
	for _, f := range files {
		totalLOC += f.EndLine
	}

	_, scoreSpan := a.tracer.Start(ctx, observability.SpanScore)
	score, err := a.scorer.Calculate(violations, len(files), totalLOC)
	if err != nil {
		observability.RecordError(scoreSpan, err)
		scoreSpan.End()
		return nil, fmt.Errorf("score: %w", err)
	}
	scoreSpan.SetAttributes(attribute.Int("archlint.score", score.Score))
	scoreSpan.End()

	res := &Result{
		Violations:     violations,
		Score:          score.Score,
		Status:         score.Status,
		SeverityCounts: scoring.CountBySeverity(violations),
		TopRisks:       scoring.Rank(violations, cfg.TopN),
		Breakdown:      score.Breakdown,
		RuleErrors:     ruleErrs,
		TotalModules:   len(files),
		TotalLOC:       totalLOC,
		Cycles:         g.Cycles,
		Timestamp:      a.now().UTC(),
		Graph:          g,
		Files:          files,
	}

	if cfg.CouplingEnabled() {
		_, cSpan := a.tracer.Start(ctx, observability.SpanCoupling)
		res.Coupling = coupling.Analyze(g, violations)
		cSpan.SetAttributes(attribute.Float64("archlint.overall_risk", res.Coupling.OverallRisk))
		cSpan.End()
	}

	a.logger.Debug("analysis complete",
		"modules", res.TotalModules,
		"loc", res.TotalLOC,
		"violations", len(violations),
		"rule_errors", len(ruleErrs),
		"score", res.Score,
	)
	return res, nil
}

func (a *Analyzer) buildGraph(ctx context.Context, root string, files []graph.SourceFile) *graph.DependencyGraph {
	_, span := a.tracer.Start(ctx, observability.SpanBuildGraph)
	defer span.End()

	paths := make([]string, len(files))
	specs := make([]graph.ModuleSpec, len(files))
	for i, f := range files {
		paths[i] = f.Path
		specs[i] = f.Spec()
	}
	g := graph.Build(specs, graph.NewResolver(root, paths))
	span.SetAttributes(
		attribute.Int("archlint.edges", g.EdgeCount()),
		attribute.Int("archlint.cycles", len(g.Cycles)),
	)
	return g
}

func (a *Analyzer) runSequential(ctx context.Context, rs []rules.Rule, rctx *rules.Context) ([]rules.Violation, []rules.RuleError, error) {
	violations := []rules.Violation{}
	ruleErrs := []rules.RuleError{}
	for _, r := range rs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		vs, rerr := a.invoke(ctx, r, rctx)
		if rerr != nil {
			ruleErrs = append(ruleErrs, *rerr)
			continue
		}
		violations = append(violations, vs...)
	}
	return violations, ruleErrs, nil
}

// runParallel runs every rule concurrently. Results are collected per rule
// index so the output matches runSequential.
func (a *Analyzer) runParallel(ctx context.Context, rs []rules.Rule, rctx *rules.Context) ([]rules.Violation, []rules.RuleError, error) {
	perRule := make([][]rules.Violation, len(rs))
	perErr := make([]*rules.RuleError, len(rs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, r := range rs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perRule[i], perErr[i] = a.invoke(gctx, r, rctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	violations := []rules.Violation{}
	ruleErrs := []rules.RuleError{}
	for i := range rs {
		if perErr[i] != nil {
			ruleErrs = append(ruleErrs, *perErr[i])
			continue
		}
		violations = append(violations, perRule[i]...)
	}
	return violations, ruleErrs, nil
}

// invoke runs one rule. A returned error or a panic becomes a RuleError and
// the rule contributes no violations.
func (a *Analyzer) invoke(ctx context.Context, r rules.Rule, rctx *rules.Context) (vs []rules.Violation, rerr *rules.RuleError) {
	name := r.Name()
	_, span := observability.StartRuleSpan(ctx, a.tracer, rules.RuleID(name))
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			vs = nil
			rerr = &rules.RuleError{
				Rule:  name,
				Error: fmt.Sprintf("panic: %v", p),
				Stack: string(debug.Stack()),
			}
		}
		if rerr != nil {
			observability.RecordError(span, errors.New(rerr.Error))
			a.logger.Warn("rule failed", "rule", name, "err", rerr.Error)
		}
	}()

	vs, err := r.Check(rctx)
	if err != nil {
		return nil, &rules.RuleError{Rule: name, Error: err.Error()}
	}
	span.SetAttributes(attribute.Int("archlint.violations", len(vs)))
	return vs, nil
}
