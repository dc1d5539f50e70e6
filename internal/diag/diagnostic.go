package diag

import (
	"sdlint/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// FixKind is a coarse classification of a fix suggestion.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRewrite
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "QUICK_FIX"
	case FixKindRefactor:
		return "REFACTOR"
	case FixKindRewrite:
		return "REWRITE"
	}
	return "UNKNOWN"
}

// FixApplicability states how much confidence the producer has that the fix
// can be applied without human review.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "ALWAYS_SAFE"
	case FixApplicabilitySafeWithHeuristics:
		return "SAFE_WITH_HEURISTICS"
	case FixApplicabilityManualReview:
		return "MANUAL_REVIEW"
	}
	return "UNKNOWN"
}

// TextEdit replaces the span with NewText. A non-empty OldText is a guard:
// the fix engine refuses the edit when the current file content differs.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix describes one automated correction for a diagnostic.
type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

// Diagnostic is a single finding bound to a primary source span.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Params   map[string]string
	Notes    []Note
	Fixes    []Fix
}
