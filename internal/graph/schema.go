package graph

// --- Enums ---

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// SupportedLanguages are the languages the loader can parse and resolve.
var SupportedLanguages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// --- Source facts ---

// FunctionInfo is the per-function structural summary extracted by the parser.
type FunctionInfo struct {
	Name       string `json:"name"`
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	Params     int    `json:"params"`
	Complexity int    `json:"complexity"` // cyclomatic, starts at 1
	MaxNesting int    `json:"maxNesting"`
}

// Lines returns the number of source lines the function spans.
func (f FunctionInfo) Lines() int {
	return f.EndLine - f.StartLine + 1
}

// SourceFile is a parsed module as handed to the graph builder and rules.
type SourceFile struct {
	Path      string         `json:"path"` // relative to the analysis root, slash separated
	Language  Language       `json:"language"`
	Imports   []string       `json:"imports"` // raw, unresolved specifiers
	Functions []FunctionInfo `json:"functions"`
	EndLine   int            `json:"endLine"`
}

// Spec returns the builder input for this file.
func (f SourceFile) Spec() ModuleSpec {
	return ModuleSpec{Path: f.Path, Language: f.Language, Imports: f.Imports}
}

// --- Snapshot models ---

// ModuleRecord is a module row in a graph Store, carrying the coupling
// metrics computed for the run that produced it.
type ModuleRecord struct {
	Path        string   `json:"path"`
	Language    Language `json:"language"`
	LOC         int      `json:"loc"`
	Ca          int      `json:"ca"`
	Ce          int      `json:"ce"`
	Instability float64  `json:"instability"`
	RiskScore   float64  `json:"riskScore"`
}

// GraphStats summarizes a stored dependency graph.
type GraphStats struct {
	ModuleCount int `json:"moduleCount"`
	EdgeCount   int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of modules forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// ImpactResult describes the blast radius of changing a set of modules.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // modules that import a changed module
	TransitivelyAffected []string `json:"transitivelyAffected"` // full upstream closure
	RiskScore            float64  `json:"riskScore"`            // 0.0–1.0, affected / total
}
