package rules

import "fmt"

// Registry is the ordered list of rules a run invokes. Registration order
// is the order violations are reported in.
type Registry struct {
	rules []Rule
	ids   map[string]bool
}

// NewRegistry returns a registry holding rules in the given order.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{ids: make(map[string]bool, len(rules))}
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns the built-in rules.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		CircularDeps{},
		LayerViolation{},
		LargeFile{},
		LongParameterList{},
		HighComplexity{},
		DeepNesting{},
		LongFunction{},
	)
	if err != nil {
		panic(err) // built-in ids are unique
	}
	return r
}

// Register appends a rule. Two rules with the same id are rejected.
func (r *Registry) Register(rule Rule) error {
	id := RuleID(rule.Name())
	if id == "" {
		return fmt.Errorf("rule has an empty name")
	}
	if r.ids[id] {
		return fmt.Errorf("rule %q already registered", id)
	}
	r.ids[id] = true
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Without returns a copy of the registry minus the rules whose id (or
// name) is listed.
func (r *Registry) Without(names ...string) *Registry {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[RuleID(n)] = true
	}
	out := &Registry{ids: make(map[string]bool, len(r.rules))}
	for _, rule := range r.rules {
		id := RuleID(rule.Name())
		if drop[id] {
			continue
		}
		out.ids[id] = true
		out.rules = append(out.rules, rule)
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
