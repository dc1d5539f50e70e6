package fix

import (
	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// Option adjusts a fix under construction.
type Option func(*diag.Fix)

// WithID pins the identifier `fix --id` addresses.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// WithKind reclassifies the fix.
func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) { f.Kind = kind }
}

// WithApplicability replaces the default safety level.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

// Preferred flags the fix clients should surface first.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

// assemble finishes a fix and runs the options over it. Nil options are
// tolerated so call sites can build them conditionally.
func assemble(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

func singleEdit(title string, kind diag.FixKind, edit diag.TextEdit, opts []Option) diag.Fix {
	return assemble(diag.Fix{
		Title:         title,
		Kind:          kind,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}, opts)
}

// InsertText inserts text at a zero-width span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) diag.Fix {
	return singleEdit(title, diag.FixKindQuickFix, diag.TextEdit{
		Span:    at,
		NewText: text,
		OldText: guard,
	}, opts)
}

// DeleteSpan removes the bytes the span covers. The expect string is the
// guard: when non-empty, apply refuses the edit unless the file still holds
// exactly that text.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	return singleEdit(title, diag.FixKindQuickFix, diag.TextEdit{
		Span:    span,
		OldText: expect,
	}, opts)
}

// ReplaceSpan swaps the bytes the span covers for newText, guarded by expect.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return singleEdit(title, diag.FixKindQuickFix, diag.TextEdit{
		Span:    span,
		NewText: newText,
		OldText: expect,
	}, opts)
}

// WrapWith surrounds the span with prefix and suffix insertions. Wrapping
// rephrases code rather than fixing it outright, so it defaults to
// SAFE_WITH_HEURISTICS and the rewrite kind.
func WrapWith(title string, span source.Span, prefix, suffix string, opts ...Option) diag.Fix {
	return assemble(diag.Fix{
		Title:         title,
		Kind:          diag.FixKindRewrite,
		Applicability: diag.FixApplicabilitySafeWithHeuristics,
		Edits: []diag.TextEdit{
			{Span: source.Span{File: span.File, Start: span.Start, End: span.Start}, NewText: prefix},
			{Span: source.Span{File: span.File, Start: span.End, End: span.End}, NewText: suffix},
		},
	}, opts)
}
