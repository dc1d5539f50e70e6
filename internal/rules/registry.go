package rules

import (
	"fmt"
	"sort"
	"sync"
)

// Registry collects the available rules and indexes directive rules by the
// directive names they subscribe to.
type Registry struct {
	mu          sync.Mutex
	rules       []Rule
	byName      map[string]int
	byDirective map[string][]int // directive name -> indices into rules
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:       make([]Rule, 0),
		byName:      make(map[string]int),
		byDirective: make(map[string][]int),
	}
}

// Register adds a rule. Rule names are unique.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rule.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("rule %q is already registered", name)
	}
	idx := len(r.rules)
	r.rules = append(r.rules, rule)
	r.byName[name] = idx
	if dr, ok := rule.(DirectiveRule); ok {
		for _, d := range dr.Directives() {
			r.byDirective[d] = append(r.byDirective[d], idx)
		}
	}
	return nil
}

// All returns the rules in registration order.
func (r *Registry) All() []Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Rule(nil), r.rules...)
}

// Get returns the named rule.
func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.byName[name]; ok {
		return r.rules[idx], true
	}
	return nil, false
}

// ForDirective returns the rules dispatched for applications of the named
// directive, in registration order.
func (r *Registry) ForDirective(name string) []DirectiveRule {
	r.mu.Lock()
	defer r.mu.Unlock()
	idxs := r.byDirective[name]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]DirectiveRule, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.rules[i].(DirectiveRule))
	}
	return out
}

// Names returns the registered rule names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rules)
}

// Default returns a registry holding the built-in rules.
func Default() *Registry {
	reg := NewRegistry()
	if err := reg.Register(NewDeprecationRule()); err != nil {
		panic(err)
	}
	return reg
}
