package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"sdlint/internal/diag"
	"sdlint/internal/fix"
	"sdlint/internal/source"
)

func render(t *testing.T, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) string {
	t.Helper()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, opts)
	return buf.String()
}

func mustContain(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(
		"/home/user/project/schema/user.graphql",
		[]byte("type User {\n  name: String @deprecated\n}\n"),
	)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(
		diag.LntRequireDeletionDate,
		source.Span{File: fileID, Start: 14, End: 18},
		"field `User.name` is deprecated without a deletion date",
	))

	modes := []struct {
		name string
		mode PathMode
		want string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/schema/user.graphql"},
		{"relative", PathModeRelative, "schema/user.graphql"},
		{"basename", PathModeBasename, "user.graphql"},
	}

	for _, tc := range modes {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, bag, fs, PrettyOpts{Context: 1, PathMode: tc.mode})
			mustContain(t, out, tc.want)
			mustContain(t, out, "ERROR")
			mustContain(t, out, "LNT3001")
			mustContain(t, out, "deprecated without a deletion date")
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	cases := []struct {
		name string
		path string
		want string
	}{
		{"short path stays", "user.graphql", "user.graphql"},
		{"long absolute path collapses", "/very/long/absolute/path/to/some/nested/schemas/posts.graphql", "posts.graphql"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tc.path, []byte("type Query { version: String }\n"))

			bag := diag.NewBag(10)
			bag.Add(diag.New(
				diag.SevWarning,
				diag.LntPastDeletionDate,
				source.Span{File: fileID, Start: 13, End: 20},
				"field `Query.version` can be removed",
			))

			out := render(t, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			mustContain(t, out, tc.want)
		})
	}
}

func TestPrettyHeaderAndUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("user.graphql", []byte("type User {\n  name: String @deprecated\n}\n"))

	bag := diag.NewBag(2)
	bag.Add(diag.New(
		diag.SevWarning,
		diag.LntPastDeletionDate,
		source.Span{File: fileID, Start: 14, End: 18},
		"field `User.name` can be removed",
	))

	out := render(t, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	mustContain(t, out, "user.graphql:2:3: WARNING LNT3004: field `User.name` can be removed")
	mustContain(t, out, "  name: String @deprecated")
	mustContain(t, out, "  ^~~~")
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("user.graphql", []byte("type User {\n  name: String @deprecated\n}\n"))

	primary := source.Span{File: fileID, Start: 14, End: 18}
	memberSpan := source.Span{File: fileID, Start: 12, End: 39}

	d := diag.New(diag.SevWarning, diag.LntPastDeletionDate, primary, "field `User.name` can be removed").
		WithNote(source.Span{File: fileID, Start: 27, End: 39}, "deletion date 25/12/2022 has passed").
		WithFix("Remove `name`", diag.TextEdit{Span: memberSpan, NewText: ""}).
		WithFixSuggestion(fix.DeleteSpan(
			"Remove `name`",
			memberSpan,
			"  name: String @deprecated\n",
			fix.WithID("deprecation-date:0:12-39"),
			fix.Preferred(),
		))

	bag := diag.NewBag(4)
	bag.Add(d)

	out := render(t, bag, fs, PrettyOpts{
		PathMode:  PathModeBasename,
		ShowNotes: true,
		ShowFixes: true,
	})

	mustContain(t, out, "note: user.graphql:2:16")
	mustContain(t, out, "fix #1: Remove `name`")
	mustContain(t, out, "delete=\"  name: String @deprecated\"")
	mustContain(t, out, "id=deprecation-date:0:12-39")
	mustContain(t, out, "preferred")
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("user.graphql", []byte("  name: String @deprecated"))

	insertSpan := source.Span{File: fileID, Start: 26, End: 26}
	d := diag.New(diag.SevError, diag.LntRequireDeletionDate, insertSpan,
		"field `User.name` is deprecated without a deletion date").
		WithFix("Add a deletion date", diag.TextEdit{
			Span:    insertSpan,
			NewText: "(deletionDate: \"25/12/2030\")",
		})

	bag := diag.NewBag(2)
	bag.Add(d)

	out := render(t, bag, fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowFixes:   true,
		ShowPreview: true,
	})

	mustContain(t, out, "preview:")
	mustContain(t, out, "-   name: String @deprecated")
	mustContain(t, out, "+   name: String @deprecated(deletionDate: \"25/12/2030\")")
	mustContain(t, out, "apply=\"(deletionDate: \\\"25/12/2030\\\")\"")
}
