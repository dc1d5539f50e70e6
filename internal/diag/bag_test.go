package diag

import (
	"testing"

	"sdlint/internal/source"
)

func TestBagAddHonoursCapacity(t *testing.T) {
	bag := NewBag(2)
	span := source.Span{File: 0, Start: 0, End: 1}

	if !bag.Add(NewError(LntRequireDeletionDate, span, "one")) {
		t.Fatal("expected first Add to succeed")
	}
	if !bag.Add(NewError(LntRequireDeletionDate, span, "two")) {
		t.Fatal("expected second Add to succeed")
	}
	if bag.Add(NewError(LntRequireDeletionDate, span, "three")) {
		t.Fatal("expected third Add to be dropped")
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", bag.Len())
	}
}

func TestBagSortOrder(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevWarning, LntPastDeletionDate, source.Span{File: 1, Start: 5, End: 6}, "w"))
	bag.Add(New(SevError, LntInvalidDeletionDate, source.Span{File: 0, Start: 9, End: 10}, "e2"))
	bag.Add(New(SevError, LntRequireDeletionDate, source.Span{File: 0, Start: 2, End: 3}, "e1"))
	bag.Add(New(SevWarning, LntPastDeletionDate, source.Span{File: 0, Start: 2, End: 3}, "w0"))

	bag.Sort()

	got := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		got = append(got, d.Message)
	}

	// same span: error sorts before warning; files and offsets ascending
	expected := []string{"e1", "w0", "e2", "w"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, expected)
		}
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	span := source.Span{File: 0, Start: 4, End: 8}
	bag.Add(NewError(LntInvalidDeletionDate, span, "dup"))
	bag.Add(NewError(LntInvalidDeletionDate, span, "dup"))
	bag.Add(NewError(LntInvalidDeletionDate, source.Span{File: 0, Start: 9, End: 10}, "other span"))

	bag.Dedup()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 items after dedup, got %d", bag.Len())
	}
}

func TestBagFilterAndTransform(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevWarning, LntPastDeletionDate, source.Span{}, "w"))
	bag.Add(New(SevError, LntRequireDeletionDate, source.Span{}, "e"))

	if !bag.HasWarnings() || !bag.HasErrors() {
		t.Fatal("expected both severities present")
	}

	bag.Transform(func(d *Diagnostic) *Diagnostic {
		if d.Severity == SevWarning {
			d.Severity = SevError
		}
		return d
	})

	bag.Filter(func(d *Diagnostic) bool {
		return d.Severity == SevError
	})

	if bag.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", bag.Len())
	}
	for _, d := range bag.Items() {
		if d.Severity != SevError {
			t.Fatalf("expected all errors, got %v", d.Severity)
		}
	}
}

func TestBagMergeGrowsCapacity(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(LntRequireDeletionDate, source.Span{}, "a"))

	b := NewBag(2)
	b.Add(NewError(LntInvalidDeletionDate, source.Span{}, "b1"))
	b.Add(NewError(LntInvalidDeletionDate, source.Span{}, "b2"))

	a.Merge(b)

	if a.Len() != 3 {
		t.Fatalf("expected 3 items after merge, got %d", a.Len())
	}
	if a.Cap() < 3 {
		t.Fatalf("expected capacity >= 3, got %d", a.Cap())
	}
}

func TestCodeIDFamilies(t *testing.T) {
	tests := []struct {
		code     Code
		expected string
	}{
		{SynParseError, "SYN2001"},
		{LntRequireDeletionDate, "LNT3001"},
		{LntBadDeletionDateFormat, "LNT3002"},
		{LntInvalidDeletionDate, "LNT3003"},
		{LntPastDeletionDate, "LNT3004"},
		{IOLoadFileError, "IO4001"},
		{CfgParseError, "CFG5001"},
		{UnknownCode, "E0000"},
	}

	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.expected {
			t.Errorf("ID(%d) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestWithParamCopiesIntoMap(t *testing.T) {
	d := NewError(LntRequireDeletionDate, source.Span{}, "msg").
		WithParam("nodeName", "field `User.firstname`")

	if d.Params["nodeName"] != "field `User.firstname`" {
		t.Fatalf("unexpected params: %v", d.Params)
	}
}
