// Package testkit holds invariant checks shared by tests and fuzz targets.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sdlint/internal/schema"
	"sdlint/internal/source"
)

// CheckDocumentSpans runs the span invariants every loaded document must
// satisfy:
//  1. every member span is non-empty, points at the document's file, and
//     stays inside the file content
//  2. a member's name span lies inside its full span
//  3. directives lie inside their owning member and carry the back-reference
//     to it; their argument values lie inside the directive
func CheckDocumentSpans(doc *schema.Document, sf *source.File) error {
	if doc == nil || sf == nil {
		return fmt.Errorf("nil document or file")
	}
	limit, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	for _, m := range doc.Members {
		if err := checkMember(m, doc.File, limit); err != nil {
			return fmt.Errorf("%s %q: %w", m.Kind, m.Name, err)
		}
	}
	return nil
}

func checkMember(m *schema.Member, file source.FileID, limit uint32) error {
	if err := checkBounds("member", m.Span, file, limit); err != nil {
		return err
	}
	if m.Span.Empty() {
		return fmt.Errorf("member span is empty: %v", m.Span)
	}
	if err := checkBounds("name", m.NameSpan, file, limit); err != nil {
		return err
	}
	if m.NameSpan.Empty() {
		return fmt.Errorf("name span is empty: %v", m.NameSpan)
	}
	if !within(m.NameSpan, m.Span) {
		return fmt.Errorf("name span %v outside member span %v", m.NameSpan, m.Span)
	}
	for _, dir := range m.Directives {
		if err := checkDirective(dir, m, file, limit); err != nil {
			return fmt.Errorf("@%s: %w", dir.Name, err)
		}
	}
	return nil
}

func checkDirective(dir *schema.Directive, owner *schema.Member, file source.FileID, limit uint32) error {
	if err := checkBounds("directive", dir.Span, file, limit); err != nil {
		return err
	}
	if !within(dir.Span, owner.Span) {
		return fmt.Errorf("directive span %v outside member span %v", dir.Span, owner.Span)
	}
	if !within(dir.NameSpan, dir.Span) {
		return fmt.Errorf("name span %v outside directive span %v", dir.NameSpan, dir.Span)
	}
	if dir.Parent != owner {
		return fmt.Errorf("parent back-reference does not point at the owning member")
	}
	for _, arg := range dir.Args {
		if arg.Value == nil {
			continue
		}
		if err := checkBounds("value", arg.Value.Span, file, limit); err != nil {
			return fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		if !within(arg.Value.Span, dir.Span) {
			return fmt.Errorf("argument %q: value span %v outside directive span %v", arg.Name, arg.Value.Span, dir.Span)
		}
	}
	return nil
}

func checkBounds(what string, sp source.Span, file source.FileID, limit uint32) error {
	if sp.File != file {
		return fmt.Errorf("%s span points at file %d, want %d", what, sp.File, file)
	}
	if sp.End < sp.Start {
		return fmt.Errorf("%s span is inverted: %v", what, sp)
	}
	if sp.End > limit {
		return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, limit)
	}
	return nil
}

// within reports whether inner is fully contained in outer.
func within(inner, outer source.Span) bool {
	return inner.Start >= outer.Start && inner.End <= outer.End
}
