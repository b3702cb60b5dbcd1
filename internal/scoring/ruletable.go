package scoring

// Category groups rules for penalty weighting and reporting.
type Category string

const (
	CategoryStructural Category = "structural"
	CategoryDesign     Category = "design"
	CategoryComplexity Category = "complexity"
	CategoryHygiene    Category = "hygiene"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryStructural, CategoryDesign, CategoryComplexity, CategoryHygiene}

var categoryMultiplier = map[Category]float64{
	CategoryStructural: 1.2,
	CategoryDesign:     1.0,
	CategoryComplexity: 0.8,
	CategoryHygiene:    0.5,
}

// RuleMeta is the scoring metadata of one rule id.
type RuleMeta struct {
	Weight   int      `json:"weight"`
	Category Category `json:"category"`
}

// unknownRule is used for ids missing from the table.
var unknownRule = RuleMeta{Weight: 1, Category: CategoryHygiene}

// RuleTable is a read-only rule id -> metadata lookup.
type RuleTable struct {
	entries map[string]RuleMeta
}

// NewRuleTable copies entries into a new table.
func NewRuleTable(entries map[string]RuleMeta) RuleTable {
	t := RuleTable{entries: make(map[string]RuleMeta, len(entries))}
	for id, meta := range entries {
		t.entries[id] = meta
	}
	return t
}

// Lookup returns the metadata for a rule id, falling back to weight 1 in
// the hygiene category.
func (t RuleTable) Lookup(id string) RuleMeta {
	if meta, ok := t.entries[id]; ok {
		return meta
	}
	return unknownRule
}

// DefaultRuleTable covers the built-in detectors plus ids commonly emitted
// by external ones.
var DefaultRuleTable = NewRuleTable(map[string]RuleMeta{
	"circular-deps":       {Weight: 10, Category: CategoryStructural},
	"layer-violation":     {Weight: 8, Category: CategoryStructural},
	"god-module":          {Weight: 7, Category: CategoryStructural},
	"shotgun-surgery":     {Weight: 6, Category: CategoryDesign},
	"large-file":          {Weight: 4, Category: CategoryDesign},
	"long-parameter-list": {Weight: 3, Category: CategoryDesign},
	"feature-envy":        {Weight: 3, Category: CategoryDesign},
	"high-complexity":     {Weight: 5, Category: CategoryComplexity},
	"deep-nesting":        {Weight: 4, Category: CategoryComplexity},
	"long-function":       {Weight: 3, Category: CategoryComplexity},
	"duplicate-code":      {Weight: 3, Category: CategoryHygiene},
	"dead-code":           {Weight: 2, Category: CategoryHygiene},
	"todo-comments":       {Weight: 1, Category: CategoryHygiene},
})
