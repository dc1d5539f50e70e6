package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSchemaFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"schema.graphql", true},
		{"schema.graphqls", true},
		{"schema.gql", true},
		{"SCHEMA.GRAPHQL", true},
		{"schema.graphql.bak", false},
		{"schema.txt", false},
		{"graphql", false},
	}
	for _, tt := range tests {
		if got := IsSchemaFile(tt.path); got != tt.want {
			t.Errorf("IsSchemaFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExpandTargetsDirectory(t *testing.T) {
	tmp := t.TempDir()
	a := writeSchema(t, tmp, "a.graphql", "type Query { a: ID }\n")
	b := writeSchema(t, tmp, filepath.Join("nested", "b.graphqls"), "type Query { b: ID }\n")
	c := writeSchema(t, tmp, "c.gql", "type Query { c: ID }\n")
	writeSchema(t, tmp, "notes.txt", "not a schema\n")

	files, err := ExpandTargets([]string{tmp}, nil, "")
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	want := []string{a, c, b}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files = %v, want %v (sorted)", files, want)
		}
	}
}

func TestExpandTargetsExplicitFile(t *testing.T) {
	tmp := t.TempDir()
	// An explicitly named file is linted even with an unusual extension.
	odd := writeSchema(t, tmp, "schema.sdl", "type Query { a: ID }\n")

	files, err := ExpandTargets([]string{odd}, nil, "")
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 1 || files[0] != odd {
		t.Fatalf("files = %v, want [%s]", files, odd)
	}
}

func TestExpandTargetsGlob(t *testing.T) {
	tmp := t.TempDir()
	a := writeSchema(t, tmp, "user.graphql", "type Query { a: ID }\n")
	writeSchema(t, tmp, "user.txt", "no\n")

	files, err := ExpandTargets([]string{filepath.Join(tmp, "*.graphql")}, nil, "")
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 1 || files[0] != a {
		t.Fatalf("files = %v, want [%s]", files, a)
	}
}

func TestExpandTargetsManifestPatterns(t *testing.T) {
	tmp := t.TempDir()
	a := writeSchema(t, tmp, filepath.Join("schema", "a.graphql"), "type Query { a: ID }\n")

	files, err := ExpandTargets(nil, []string{"schema/*.graphql"}, tmp)
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 1 || files[0] != a {
		t.Fatalf("files = %v, want [%s]", files, a)
	}
}

func TestExpandTargetsArgsWinOverPatterns(t *testing.T) {
	tmp := t.TempDir()
	a := writeSchema(t, tmp, "a.graphql", "type Query { a: ID }\n")
	writeSchema(t, tmp, filepath.Join("schema", "b.graphql"), "type Query { b: ID }\n")

	files, err := ExpandTargets([]string{a}, []string{"schema/*.graphql"}, tmp)
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 1 || files[0] != a {
		t.Fatalf("files = %v, want only the explicit arg", files)
	}
}

func TestExpandTargetsDeduplicates(t *testing.T) {
	tmp := t.TempDir()
	a := writeSchema(t, tmp, "a.graphql", "type Query { a: ID }\n")

	files, err := ExpandTargets([]string{a, a, tmp}, nil, "")
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want a single entry", files)
	}
}

func TestExpandTargetsNoMatch(t *testing.T) {
	tmp := t.TempDir()
	if _, err := ExpandTargets([]string{filepath.Join(tmp, "*.graphql")}, nil, ""); err == nil {
		t.Fatal("expected an error for a pattern with no matches")
	}
}

func TestExpandTargetsEmpty(t *testing.T) {
	files, err := ExpandTargets(nil, nil, t.TempDir())
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %v, want none", files)
	}
}

func TestExpandTargetsDirPattern(t *testing.T) {
	tmp := t.TempDir()
	a := writeSchema(t, tmp, filepath.Join("api", "a.graphql"), "type Query { a: ID }\n")

	// A glob that matches a directory walks it.
	files, err := ExpandTargets(nil, []string{"ap*"}, tmp)
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(files) != 1 || files[0] != a {
		t.Fatalf("files = %v, want [%s]", files, a)
	}
}

func TestExpandTargetsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.graphql")
	if _, err := ExpandTargets([]string{missing}, nil, ""); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := os.Stat(missing); err == nil {
		t.Fatal("test invariant: file must not exist")
	}
}
