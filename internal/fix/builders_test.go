package fix

import (
	"testing"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

func TestSingleEditBuilders(t *testing.T) {
	insertAt := source.Span{File: 0, Start: 0, End: 0}
	member := source.Span{File: 0, Start: 12, End: 18}
	typeRef := source.Span{File: 0, Start: 16, End: 18}

	cases := []struct {
		name    string
		fix     diag.Fix
		span    source.Span
		newText string
		oldText string
	}{
		{
			name:    "insert",
			fix:     InsertText("Add description", insertAt, "\"User record.\"\n", ""),
			span:    insertAt,
			newText: "\"User record.\"\n",
		},
		{
			name:    "delete keeps the guard text",
			fix:     DeleteSpan("Remove `id`", member, "id: ID"),
			span:    member,
			oldText: "id: ID",
		},
		{
			name:    "replace",
			fix:     ReplaceSpan("Use ID! instead of ID", typeRef, "ID!", "ID"),
			span:    typeRef,
			newText: "ID!",
			oldText: "ID",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fix.Kind != diag.FixKindQuickFix {
				t.Errorf("Kind = %v, want quick fix", tc.fix.Kind)
			}
			if tc.fix.Applicability != diag.FixApplicabilityAlwaysSafe {
				t.Errorf("Applicability = %v, want always safe", tc.fix.Applicability)
			}
			if tc.fix.IsPreferred {
				t.Error("IsPreferred must default to false")
			}
			if len(tc.fix.Edits) != 1 {
				t.Fatalf("edits = %d, want 1", len(tc.fix.Edits))
			}
			edit := tc.fix.Edits[0]
			if edit.Span != tc.span {
				t.Errorf("edit span = %v, want %v", edit.Span, tc.span)
			}
			if edit.NewText != tc.newText {
				t.Errorf("NewText = %q, want %q", edit.NewText, tc.newText)
			}
			if edit.OldText != tc.oldText {
				t.Errorf("OldText = %q, want %q", edit.OldText, tc.oldText)
			}
		})
	}
}

func TestWrapWithEdits(t *testing.T) {
	span := source.Span{File: 0, Start: 0, End: 4}
	wrapped := WrapWith("Wrap in list type", span, "[", "]")

	if len(wrapped.Edits) != 2 {
		t.Fatalf("edits = %d, want prefix and suffix", len(wrapped.Edits))
	}

	prefix, suffix := wrapped.Edits[0], wrapped.Edits[1]
	if prefix.NewText != "[" || prefix.Span.Start != 0 || prefix.Span.End != 0 {
		t.Errorf("prefix must insert %q at span start, got %+v", "[", prefix)
	}
	if suffix.NewText != "]" || suffix.Span.Start != 4 || suffix.Span.End != 4 {
		t.Errorf("suffix must insert %q at span end, got %+v", "]", suffix)
	}

	if wrapped.Kind != diag.FixKindRewrite {
		t.Errorf("Kind = %v, want rewrite", wrapped.Kind)
	}
	if wrapped.Applicability != diag.FixApplicabilitySafeWithHeuristics {
		t.Errorf("Applicability = %v, want safe with heuristics", wrapped.Applicability)
	}
}

func TestBuilderOptions(t *testing.T) {
	span := source.Span{File: 0, Start: 0, End: 0}

	got := InsertText(
		"Add description",
		span,
		"\"User record.\"\n",
		"",
		Preferred(),
		WithID("custom-id"),
		WithKind(diag.FixKindRefactor),
		WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
	)

	if !got.IsPreferred {
		t.Error("Preferred() must set IsPreferred")
	}
	if got.ID != "custom-id" {
		t.Errorf("ID = %q, want custom-id", got.ID)
	}
	if got.Kind != diag.FixKindRefactor {
		t.Errorf("Kind = %v, want refactor", got.Kind)
	}
	if got.Applicability != diag.FixApplicabilitySafeWithHeuristics {
		t.Errorf("Applicability = %v, want safe with heuristics", got.Applicability)
	}
}

func TestNilOptionIsIgnored(t *testing.T) {
	var nilOpt Option
	span := source.Span{File: 0, Start: 0, End: 0}

	got := InsertText("Add description", span, "\"User record.\"\n", "", nilOpt, Preferred())

	if !got.IsPreferred {
		t.Error("options after a nil entry must still apply")
	}
	if len(got.Edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(got.Edits))
	}
}
