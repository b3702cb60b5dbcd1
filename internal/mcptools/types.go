package mcptools

import (
	"github.com/dusk-indust/archlint/internal/coupling"
	"github.com/dusk-indust/archlint/internal/graph"
	"github.com/dusk-indust/archlint/internal/rules"
	"github.com/dusk-indust/archlint/internal/scoring"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates each tool's JSON schema from these struct tags.

// AnalyzeArchitectureInput is the input for the analyze_architecture MCP tool.
type AnalyzeArchitectureInput struct {
	RepoPath  string   `json:"repoPath" jsonschema:"the absolute path to the repository to analyze"`
	Languages []string `json:"languages,omitempty" jsonschema:"languages to analyze (default: all). Values: go, typescript, python, rust"`
	Exclude   []string `json:"exclude,omitempty" jsonschema:"glob patterns of paths to skip, relative to repoPath"`
	TopN      int      `json:"topN,omitempty" jsonschema:"number of top risks to return (default: 5)"`
}

// AnalyzeArchitectureOutput is the result of the analyze_architecture MCP tool.
type AnalyzeArchitectureOutput struct {
	Score          int                    `json:"score"`
	Status         scoring.Status         `json:"status"`
	SeverityCounts scoring.SeverityCounts `json:"severityCounts"`
	TopRisks       []rules.Violation      `json:"topRisks"`
	Cycles         [][]string             `json:"cycles"`
	RuleErrors     []rules.RuleError      `json:"ruleErrors"`
	TotalModules   int                    `json:"totalModules"`
	TotalLOC       int                    `json:"totalLoc"`
	Stats          graph.GraphStats       `json:"stats"`
}

// GetCouplingRiskInput is the input for the get_coupling_risk MCP tool.
type GetCouplingRiskInput struct {
	Path string `json:"path,omitempty" jsonschema:"module path to report on; omit for the project-wide picture"`
}

// GetCouplingRiskOutput is the result of the get_coupling_risk MCP tool.
type GetCouplingRiskOutput struct {
	OverallRisk        float64                  `json:"overallRisk"`
	AverageCa          float64                  `json:"averageCa"`
	AverageCe          float64                  `json:"averageCe"`
	AverageInstability float64                  `json:"averageInstability"`
	HighRiskModules    []coupling.ModuleMetrics `json:"highRiskModules"`
	HubModules         []coupling.ModuleMetrics `json:"hubModules"`
	UnstableModules    []coupling.ModuleMetrics `json:"unstableModules"`
	Module             *graph.ModuleRecord      `json:"module,omitempty"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	Path      string `json:"path" jsonschema:"module path relative to the analyzed repository"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it depends on) or downstream (what depends on it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"module paths that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}
