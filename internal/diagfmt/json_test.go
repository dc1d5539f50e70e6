package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"sdlint/internal/diag"
	"sdlint/internal/fix"
	"sdlint/internal/source"
)

func testBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()

	fs := source.NewFileSet()
	content := []byte("type User {\n  name: String @deprecated\n}\n")
	fileID := fs.AddVirtual("schema/user.graphql", content)

	bag := diag.NewBag(10)

	primary := source.Span{File: fileID, Start: 14, End: 18}
	d := diag.New(diag.SevWarning, diag.LntPastDeletionDate, primary, "field `User.name` can be removed")
	d = d.WithParam("date", "25/12/2022")
	d = d.WithNote(source.Span{File: fileID, Start: 27, End: 39}, "deletion date 25/12/2022 has passed")

	memberSpan := source.Span{File: fileID, Start: 12, End: 40}
	d = d.WithFixSuggestion(fix.DeleteSpan(
		"Remove `name`",
		memberSpan,
		"name: String @deprecated\n",
		fix.WithID("deprecation-date:0:12-40"),
		fix.Preferred(),
	))
	bag.Add(d)

	bag.Add(diag.NewError(diag.LntRequireDeletionDate,
		source.Span{File: fileID, Start: 14, End: 18},
		"field `User.name` is deprecated without a deletion date"))

	return bag, fs
}

func TestBuildDiagnosticsOutput(t *testing.T) {
	bag, fs := testBag(t)

	output, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	})
	if err != nil {
		t.Fatalf("BuildDiagnosticsOutput: %v", err)
	}

	if output.Count != 2 {
		t.Fatalf("expected count 2, got %d", output.Count)
	}

	first := output.Diagnostics[0]
	if first.Severity != "WARNING" || first.Code != "LNT3004" {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if first.Location.File != "user.graphql" {
		t.Fatalf("expected basename path, got %q", first.Location.File)
	}
	if first.Location.StartLine != 2 || first.Location.StartCol != 3 {
		t.Fatalf("unexpected position %+v", first.Location)
	}
	if first.Params["date"] != "25/12/2022" {
		t.Fatalf("expected date param, got %v", first.Params)
	}
	if len(first.Notes) != 1 || !strings.Contains(first.Notes[0].Message, "has passed") {
		t.Fatalf("unexpected notes %+v", first.Notes)
	}
	if len(first.Fixes) != 1 {
		t.Fatalf("expected one fix, got %+v", first.Fixes)
	}
	gotFix := first.Fixes[0]
	if gotFix.ID != "deprecation-date:0:12-40" || !gotFix.IsPreferred {
		t.Fatalf("unexpected fix %+v", gotFix)
	}
	if len(gotFix.Edits) != 1 || gotFix.Edits[0].OldText == "" {
		t.Fatalf("expected guarded edit, got %+v", gotFix.Edits)
	}

	second := output.Diagnostics[1]
	if second.Severity != "ERROR" || second.Code != "LNT3001" {
		t.Fatalf("unexpected second diagnostic %+v", second)
	}
}

func TestBuildDiagnosticsOutputExcludesExtrasByDefault(t *testing.T) {
	bag, fs := testBag(t)

	output, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
	if err != nil {
		t.Fatalf("BuildDiagnosticsOutput: %v", err)
	}

	first := output.Diagnostics[0]
	if len(first.Notes) != 0 {
		t.Fatalf("notes should be off by default, got %+v", first.Notes)
	}
	if len(first.Fixes) != 0 {
		t.Fatalf("fixes should be off by default, got %+v", first.Fixes)
	}
	if first.Location.StartLine != 0 {
		t.Fatalf("positions should be off by default, got %+v", first.Location)
	}
}

func TestBuildDiagnosticsOutputMax(t *testing.T) {
	bag, fs := testBag(t)

	output, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if err != nil {
		t.Fatalf("BuildDiagnosticsOutput: %v", err)
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("expected truncation to 1, got %d", output.Count)
	}
	if bag.Len() != 2 {
		t.Fatalf("truncation must not touch the bag, got %d items", bag.Len())
	}
}

func TestJSONRoundTrips(t *testing.T) {
	bag, fs := testBag(t)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 2 {
		t.Fatalf("expected 2 diagnostics after decode, got %d", decoded.Count)
	}
	if decoded.Diagnostics[0].Message == "" {
		t.Fatal("expected message to survive the round trip")
	}
}
