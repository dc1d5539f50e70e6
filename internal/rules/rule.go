// Package rules hosts the lint rules and the engine that dispatches parsed
// schema documents to them. Rules return plain structured findings; the
// engine materializes findings into diagnostics through each rule's message
// catalog.
package rules

import (
	"sdlint/internal/diag"
	"sdlint/internal/schema"
	"sdlint/internal/source"
)

// FindingKind enumerates the outcomes a rule can report.
type FindingKind uint8

const (
	FindingRequireDate FindingKind = iota
	FindingInvalidFormat
	FindingInvalidDate
	FindingCanBeRemoved
)

func (k FindingKind) String() string {
	switch k {
	case FindingRequireDate:
		return "RequireDate"
	case FindingInvalidFormat:
		return "InvalidFormat"
	case FindingInvalidDate:
		return "InvalidDate"
	case FindingCanBeRemoved:
		return "CanBeRemoved"
	}
	return "Unknown"
}

// Code returns the diagnostic code the finding kind maps to.
func (k FindingKind) Code() diag.Code {
	switch k {
	case FindingRequireDate:
		return diag.LntRequireDeletionDate
	case FindingInvalidFormat:
		return diag.LntBadDeletionDateFormat
	case FindingInvalidDate:
		return diag.LntInvalidDeletionDate
	case FindingCanBeRemoved:
		return diag.LntPastDeletionDate
	}
	return diag.UnknownCode
}

// Severity maps the finding kind to a severity: a removable member is
// advisory, everything else blocks.
func (k FindingKind) Severity() diag.Severity {
	if k == FindingCanBeRemoved {
		return diag.SevWarning
	}
	return diag.SevError
}

// SuggestedEdit is a proposed deletion left for the host to apply.
type SuggestedEdit struct {
	Description string
	DeleteSpan  source.Span
}

// FindingNote is secondary context attached to a finding.
type FindingNote struct {
	Span source.Span
	Text string
}

// Finding is the immutable record a rule hands back for one violation:
// a kind, an anchor span, named message parameters, and optionally notes
// and a suggested edit. Findings are created fresh per evaluation.
type Finding struct {
	Kind   FindingKind
	Anchor source.Span
	Params map[string]string
	Notes  []FindingNote
	Edit   *SuggestedEdit
}

// Rule is one lint check. Rules are stateless between runs; per-run inputs
// arrive through the Context.
type Rule interface {
	Name() string
	Description() string

	// Messages maps finding kinds to message templates with named
	// {placeholder} slots, substituted from Finding.Params.
	Messages() map[FindingKind]string
}

// DirectiveRule is a rule dispatched once per application of the directives
// it names. CheckDirective returns at most one finding per application.
type DirectiveRule interface {
	Rule
	Directives() []string
	CheckDirective(ctx *Context, dir *schema.Directive) *Finding
}

// Fixer is implemented by rules that attach suggested edits to findings.
type Fixer interface {
	Fixable() bool
}

// Configurable is implemented by rules that accept options from the config
// file. Configure is called before a run with the rule's decoded table.
type Configurable interface {
	Configure(opts map[string]any) error
}
