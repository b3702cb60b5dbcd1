package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/config"
	"github.com/dusk-indust/archlint/internal/coupling"
	"github.com/dusk-indust/archlint/internal/graph"
)

// ErrNoGraph is returned by query tools before a repository was analyzed.
var ErrNoGraph = errors.New("no analysis loaded: call analyze_architecture first")

// ArchService holds the most recent analysis and its graph snapshot. Every
// analyze_architecture call replaces both.
type ArchService struct {
	analyzer *analyzer.Analyzer
	newStore func() (graph.Store, error)
	logger   *slog.Logger

	mu     sync.RWMutex
	store  graph.Store
	result *analyzer.Result
}

// ServiceOption configures an ArchService.
type ServiceOption func(*ArchService)

// WithStoreFactory sets how the graph snapshot store is created for each
// analysis. Defaults to an in-memory store.
func WithStoreFactory(fn func() (graph.Store, error)) ServiceOption {
	return func(s *ArchService) { s.newStore = fn }
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *ArchService) { s.logger = l }
}

// NewArchService creates an ArchService that analyzes with a.
func NewArchService(a *analyzer.Analyzer, opts ...ServiceOption) *ArchService {
	s := &ArchService{
		analyzer: a,
		newStore: func() (graph.Store, error) { return graph.NewMemStore(), nil },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the current snapshot store.
func (s *ArchService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store, s.result = nil, nil
	return err
}

// AnalyzeArchitecture analyzes a repository and loads its graph snapshot
// for the query tools.
func (s *ArchService) AnalyzeArchitecture(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeArchitectureInput,
) (*mcp.CallToolResult, AnalyzeArchitectureOutput, error) {
	if input.RepoPath == "" {
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("repoPath is required")
	}
	info, err := os.Stat(input.RepoPath)
	if err != nil {
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("cannot access repoPath: %w", err)
	}
	if !info.IsDir() {
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("repoPath is not a directory: %s", input.RepoPath)
	}

	cfg, err := config.Load(input.RepoPath)
	if err != nil {
		return nil, AnalyzeArchitectureOutput{}, err
	}
	if len(input.Languages) > 0 {
		cfg.Languages = input.Languages
	}
	cfg.Exclude = append(cfg.Exclude, input.Exclude...)
	if input.TopN > 0 {
		cfg.TopN = input.TopN
	}

	res, err := s.analyzer.Analyze(ctx, input.RepoPath, cfg)
	if err != nil {
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("analyze: %w", err)
	}

	store, err := s.newStore()
	if err != nil {
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("open store: %w", err)
	}
	if err := graph.Populate(ctx, store, res.Graph, res.ModuleRecords()); err != nil {
		store.Close()
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("populate store: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		store.Close()
		return nil, AnalyzeArchitectureOutput{}, fmt.Errorf("stats: %w", err)
	}

	s.swap(store, res)
	s.logger.Info("analysis loaded", "repo", input.RepoPath, "modules", stats.ModuleCount, "score", res.Score)

	return nil, AnalyzeArchitectureOutput{
		Score:          res.Score,
		Status:         res.Status,
		SeverityCounts: res.SeverityCounts,
		TopRisks:       res.TopRisks,
		Cycles:         res.Cycles,
		RuleErrors:     res.RuleErrors,
		TotalModules:   res.TotalModules,
		TotalLOC:       res.TotalLOC,
		Stats:          *stats,
	}, nil
}

func (s *ArchService) swap(store graph.Store, res *analyzer.Result) {
	s.mu.Lock()
	old := s.store
	s.store, s.result = store, res
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("close previous store", "err", err)
		}
	}
}

// current returns the loaded snapshot, or ErrNoGraph.
func (s *ArchService) current() (graph.Store, *analyzer.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, nil, ErrNoGraph
	}
	return s.store, s.result, nil
}

// GetCouplingRisk reports the coupling watch-lists of the loaded analysis,
// and the stored metrics of one module when a path is given.
func (s *ArchService) GetCouplingRisk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCouplingRiskInput,
) (*mcp.CallToolResult, GetCouplingRiskOutput, error) {
	store, res, err := s.current()
	if err != nil {
		return nil, GetCouplingRiskOutput{}, err
	}

	cp := res.Coupling
	if cp == nil {
		cp = coupling.Analyze(res.Graph, res.Violations)
	}
	out := GetCouplingRiskOutput{
		OverallRisk:        cp.OverallRisk,
		AverageCa:          cp.AverageCa,
		AverageCe:          cp.AverageCe,
		AverageInstability: cp.AverageInstability,
		HighRiskModules:    cp.HighRiskModules,
		HubModules:         cp.HubModules,
		UnstableModules:    cp.UnstableModules,
	}

	if input.Path != "" {
		rec, err := store.GetModule(ctx, input.Path)
		if err != nil {
			return nil, GetCouplingRiskOutput{}, fmt.Errorf("get module: %w", err)
		}
		if rec == nil {
			return nil, GetCouplingRiskOutput{}, fmt.Errorf("module not found: %s", input.Path)
		}
		out.Module = rec
	}
	return nil, out, nil
}

// GetDependencies traverses the loaded dependency graph from one module.
func (s *ArchService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Path == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("path is required")
	}
	store, _, err := s.current()
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}

	direction := graph.DirectionDownstream
	if strings.EqualFold(input.Direction, "upstream") {
		direction = graph.DirectionUpstream
	}
	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := store.GetDependencies(ctx, input.Path, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}
	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the blast radius of modifying a set of modules.
func (s *ArchService) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}
	store, _, err := s.current()
	if err != nil {
		return nil, AssessImpactOutput{}, err
	}

	impact, err := store.AssessImpact(ctx, input.ChangedFiles)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}
	return nil, AssessImpactOutput{Impact: *impact}, nil
}
