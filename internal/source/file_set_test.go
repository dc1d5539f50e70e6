package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetAddAssignsSequentialIDs(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("schema.graphql", []byte("type Query { ok: Boolean }"), 0)
	if id1 != 0 {
		t.Errorf("expected first FileID to be 0, got %d", id1)
	}

	id2 := fs.Add("schema.graphql", []byte("type Query { ok: Boolean! }"), 0)
	if id2 != 1 {
		t.Errorf("expected second FileID to be 1, got %d", id2)
	}

	// the old snapshot stays reachable by ID
	file1 := fs.Get(id1)
	if string(file1.Content) != "type Query { ok: Boolean }" {
		t.Errorf("unexpected first file content: %q", string(file1.Content))
	}

	// the path index points at the latest version
	latest, ok := fs.GetByPath("schema.graphql")
	if !ok {
		t.Fatal("expected schema.graphql to be indexed")
	}
	if latest.ID != id2 {
		t.Errorf("expected latest ID %d, got %d", id2, latest.ID)
	}

	if fs.Len() != 2 {
		t.Errorf("expected 2 files, got %d", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.graphql", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}

	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.graphql")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("type Query {\r\n  ok: Boolean\r\n}\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	file := fs.Get(id)
	if string(file.Content) != "type Query {\n  ok: Boolean\n}\n" {
		t.Errorf("unexpected normalized content: %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag to be set")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	content := []byte("type User {\n  firstname: String\n}\n")
	id := fs.AddVirtual("user.graphql", content)

	tests := []struct {
		name  string
		span  Span
		start LineCol
		end   LineCol
	}{
		{
			name:  "first line start",
			span:  Span{File: id, Start: 0, End: 4},
			start: LineCol{Line: 1, Col: 1},
			end:   LineCol{Line: 1, Col: 5},
		},
		{
			name:  "field on second line",
			span:  Span{File: id, Start: 14, End: 23},
			start: LineCol{Line: 2, Col: 3},
			end:   LineCol{Line: 2, Col: 12},
		},
		{
			name:  "closing brace",
			span:  Span{File: id, Start: 32, End: 33},
			start: LineCol{Line: 3, Col: 1},
			end:   LineCol{Line: 3, Col: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := fs.Resolve(tt.span)
			if start != tt.start {
				t.Errorf("start = %+v, want %+v", start, tt.start)
			}
			if end != tt.end {
				t.Errorf("end = %+v, want %+v", end, tt.end)
			}
		})
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("user.graphql", []byte("type User {\n  firstname: String\n}"))
	file := fs.Get(id)

	tests := []struct {
		name     string
		line     uint32
		expected string
	}{
		{"zero line", 0, ""},
		{"first", 1, "type User {"},
		{"second", 2, "  firstname: String"},
		{"last without newline", 3, "}"},
		{"past end", 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := file.GetLine(tt.line); got != tt.expected {
				t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.expected)
			}
		})
	}
}

func TestFormatPathModes(t *testing.T) {
	f := &File{Path: "/home/user/project/schema/user.graphql"}

	tests := []struct {
		name     string
		mode     string
		baseDir  string
		expected string
	}{
		{"absolute", "absolute", "", "/home/user/project/schema/user.graphql"},
		{"relative", "relative", "/home/user/project", "schema/user.graphql"},
		{"basename", "basename", "", "user.graphql"},
		{"auto long absolute collapses", "auto", "", "user.graphql"},
		{"unknown mode keeps path", "whatever", "", "/home/user/project/schema/user.graphql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.FormatPath(tt.mode, tt.baseDir); got != tt.expected {
				t.Errorf("FormatPath(%q) = %q, want %q", tt.mode, got, tt.expected)
			}
		})
	}
}

func TestFormatPathAutoKeepsShortPaths(t *testing.T) {
	f := &File{Path: "schema/user.graphql"}
	if got := f.FormatPath("auto", ""); got != "schema/user.graphql" {
		t.Errorf("FormatPath(auto) = %q, want %q", got, "schema/user.graphql")
	}
}
