// Package diag holds the diagnostic data model every stage of the linter
// reports into and every output format reads from.
//
// The model is deliberately plain data. Schema loading and lint rules build
// Diagnostic values and hand them to a Reporter; a Bag accumulates them with
// a capacity limit and deterministic ordering. Nothing in this package
// formats, prints, or touches the filesystem. Rendering lives in
// internal/diagfmt, fix application in internal/fix and the driver layer.
//
// A Diagnostic pairs a Severity (severity.go) and a stable Code (codes.go)
// with a short human message and a primary source.Span. Rules may attach
// Params (named values for machine-readable output), Notes (secondary spans
// with context), and Fixes.
//
// A Fix describes an automated correction: a Title for listings, a Kind
// (quick fix, refactor, rewrite), an Applicability confidence level
// (AlwaysSafe, SafeWithHeuristics, ManualReview), an IsPreferred marker, and
// the concrete TextEdits. An edit whose OldText is non-empty is guarded: the
// fix engine compares it against the current file content and skips the fix
// on mismatch instead of corrupting the file.
//
// Determinism matters here. Diagnostics are serialised into the result cache
// and compared verbatim in golden tests, so new fields must serialise stably
// and carry no side effects.
package diag
