package rules

import (
	"fmt"
	"sort"

	"sdlint/internal/diag"
	"sdlint/internal/fix"
	"sdlint/internal/schema"
)

// Engine dispatches parsed documents to the registered rules and turns their
// findings into diagnostics.
type Engine struct {
	registry *Registry
	enabled  map[string]bool // nil enables every rule
}

// NewEngine creates an engine over a registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Enable restricts the run to the named rules. An empty list enables all.
// Unknown names are rejected so the config layer can report them.
func (e *Engine) Enable(names []string) error {
	if len(names) == 0 {
		e.enabled = nil
		return nil
	}
	enabled := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := e.registry.Get(name); !ok {
			return fmt.Errorf("unknown rule %q", name)
		}
		enabled[name] = true
	}
	e.enabled = enabled
	return nil
}

// Configure hands each rule its decoded options table.
func (e *Engine) Configure(options map[string]map[string]any) error {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule, ok := e.registry.Get(name)
		if !ok {
			return fmt.Errorf("unknown rule %q", name)
		}
		c, ok := rule.(Configurable)
		if !ok {
			return fmt.Errorf("rule %q does not accept options", name)
		}
		if err := c.Configure(options[name]); err != nil {
			return fmt.Errorf("rule %q: %w", name, err)
		}
	}
	return nil
}

// Run evaluates every directive application of the document in source order.
// Each application yields at most one finding per rule.
func (e *Engine) Run(ctx *Context, doc *schema.Document) {
	if doc == nil {
		return
	}
	for _, m := range doc.Members {
		for _, d := range m.Directives {
			for _, rule := range e.registry.ForDirective(d.Name) {
				if e.enabled != nil && !e.enabled[rule.Name()] {
					continue
				}
				if f := rule.CheckDirective(ctx, d); f != nil {
					e.report(ctx, rule, f)
				}
			}
		}
	}
}

// report materializes a finding: message text from the rule's catalog,
// params preserved for machine output, notes, and the suggested edit turned
// into a guarded delete fix.
func (e *Engine) report(ctx *Context, rule Rule, f *Finding) {
	msg := Expand(rule.Messages()[f.Kind], f.Params)
	b := diag.NewReportBuilder(ctx.sink, f.Kind.Severity(), f.Kind.Code(), f.Anchor, msg)
	for name, value := range f.Params {
		b.WithParam(name, value)
	}
	for _, n := range f.Notes {
		b.WithNote(n.Span, n.Text)
	}
	if f.Edit != nil {
		sp := f.Edit.DeleteSpan
		guard := ""
		if file := ctx.FileSet.Get(sp.File); int(sp.End) <= len(file.Content) {
			guard = string(file.Content[sp.Start:sp.End])
		}
		id := fmt.Sprintf("%s:%d:%d-%d", rule.Name(), sp.File, sp.Start, sp.End)
		b.WithFixSuggestion(fix.DeleteSpan(f.Edit.Description, sp, guard,
			fix.WithID(id), fix.Preferred()))
	}
	b.Emit()
}
