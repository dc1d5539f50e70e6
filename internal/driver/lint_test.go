package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sdlint/internal/diag"
	"sdlint/internal/diagfmt"
	"sdlint/internal/pipeline"
	"sdlint/internal/source"
)

// Mid-2023: after 25/12/2022, before 25/12/2099.
var testNow = time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

func writeSchema(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFiles(t *testing.T) {
	tmp := t.TempDir()
	clean := writeSchema(t, tmp, "clean.graphql",
		"type Query {\n  user: User\n}\n\ntype User {\n  id: ID!\n}\n")
	dirty := writeSchema(t, tmp, "dirty.graphql",
		"type User {\n  firstname: String @deprecated\n}\n")

	fileSet := source.NewFileSet()
	results, err := LintFiles(context.Background(), fileSet, []string{clean, dirty}, Options{
		MaxDiagnostics: 8,
		Jobs:           2,
		Now:            testNow,
	})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	// Result slots follow input order regardless of worker scheduling.
	if results[0].Path != clean || results[1].Path != dirty {
		t.Fatalf("result order = %q, %q", results[0].Path, results[1].Path)
	}
	if results[0].Bag.Len() != 0 {
		t.Errorf("clean file diagnostics = %d, want 0: %v", results[0].Bag.Len(), results[0].Bag.Items())
	}
	items := results[1].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.LntRequireDeletionDate {
		t.Fatalf("dirty file diagnostics = %v", items)
	}
	if file := fileSet.Get(results[1].FileID); file.Path != filepath.ToSlash(dirty) {
		t.Errorf("FileID resolves to %q", file.Path)
	}
}

func TestLintFilesLoadError(t *testing.T) {
	tmp := t.TempDir()
	missing := filepath.Join(tmp, "absent.graphql")

	fileSet := source.NewFileSet()
	results, err := LintFiles(context.Background(), fileSet, []string{missing}, Options{Now: testNow})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	items := results[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics = %v, want a load error", items)
	}
	if items[0].Severity != diag.SevError {
		t.Errorf("severity = %v", items[0].Severity)
	}

	// Load failures feed into pretty formatting in the CLI; ensure the
	// virtual file keeps span resolution from panicking.
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("pretty formatting panicked: %v", r)
			}
		}()
		var buf bytes.Buffer
		diagfmt.Pretty(&buf, results[0].Bag, fileSet, diagfmt.PrettyOpts{Context: 1})
	}()
}

func TestLintFilesParseError(t *testing.T) {
	tmp := t.TempDir()
	broken := writeSchema(t, tmp, "broken.graphql", "type User {\n  firstname String\n}\n")

	fileSet := source.NewFileSet()
	results, err := LintFiles(context.Background(), fileSet, []string{broken}, Options{Now: testNow})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	items := results[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynParseError {
		t.Fatalf("diagnostics = %v, want one parse error", items)
	}
}

func TestLintFilesWarningFlags(t *testing.T) {
	src := "type User {\n  firstname: String @deprecated(deletionDate: \"25/12/2022\")\n}\n"

	t.Run("default keeps warning", func(t *testing.T) {
		path := writeSchema(t, t.TempDir(), "s.graphql", src)
		results, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, Options{Now: testNow})
		if err != nil {
			t.Fatalf("LintFiles: %v", err)
		}
		items := results[0].Bag.Items()
		if len(items) != 1 || items[0].Severity != diag.SevWarning {
			t.Fatalf("diagnostics = %v, want one warning", items)
		}
	})

	t.Run("no-warnings drops it", func(t *testing.T) {
		path := writeSchema(t, t.TempDir(), "s.graphql", src)
		results, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, Options{
			Now:        testNow,
			NoWarnings: true,
		})
		if err != nil {
			t.Fatalf("LintFiles: %v", err)
		}
		if n := results[0].Bag.Len(); n != 0 {
			t.Fatalf("diagnostics = %d, want 0", n)
		}
	})

	t.Run("warnings-as-errors promotes it", func(t *testing.T) {
		path := writeSchema(t, t.TempDir(), "s.graphql", src)
		results, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, Options{
			Now:              testNow,
			WarningsAsErrors: true,
		})
		if err != nil {
			t.Fatalf("LintFiles: %v", err)
		}
		items := results[0].Bag.Items()
		if len(items) != 1 || items[0].Severity != diag.SevError {
			t.Fatalf("diagnostics = %v, want one error", items)
		}
		if items[0].Code != diag.LntPastDeletionDate {
			t.Errorf("code = %s, promotion must not rewrite codes", items[0].Code.ID())
		}
	})
}

func TestLintFilesUnknownRule(t *testing.T) {
	if _, err := LintFiles(context.Background(), source.NewFileSet(), nil, Options{
		Rules: []string{"no-such-rule"},
	}); err == nil {
		t.Fatal("expected error for unknown rule name")
	}
}

func TestLintFilesResultCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenResultCache("sdlint")
	if err != nil {
		t.Fatalf("OpenResultCache: %v", err)
	}

	tmp := t.TempDir()
	path := writeSchema(t, tmp, "s.graphql",
		"type User {\n  firstname: String @deprecated(deletionDate: \"25/12/2022\")\n}\n")
	opts := Options{Now: testNow, Cache: cache, ConfigStamp: "test"}

	first, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached {
		t.Fatal("first run must not be a cache hit")
	}

	second, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached {
		t.Fatal("second run should hit the cache")
	}

	want := first[0].Bag.Items()
	got := second[0].Bag.Items()
	if len(got) != len(want) {
		t.Fatalf("cached diagnostics = %d, want %d", len(got), len(want))
	}
	if got[0].Code != want[0].Code || got[0].Message != want[0].Message {
		t.Errorf("cached diagnostic = %v, want %v", got[0], want[0])
	}
	if len(got[0].Fixes) != len(want[0].Fixes) {
		t.Fatalf("cached fixes = %d, want %d", len(got[0].Fixes), len(want[0].Fixes))
	}
	if len(want[0].Fixes) > 0 {
		if got[0].Fixes[0].Edits[0].OldText != want[0].Fixes[0].Edits[0].OldText {
			t.Error("cached fix lost its guard text")
		}
	}

	// The linting day participates in the key: the same file must be
	// recomputed on another day, because past-date verdicts can flip.
	nextDay := opts
	nextDay.Now = testNow.Add(48 * time.Hour)
	third, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, nextDay)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third[0].Cached {
		t.Fatal("a different day must miss the cache")
	}
}

func TestLintFilesEmitsEvents(t *testing.T) {
	tmp := t.TempDir()
	path := writeSchema(t, tmp, "s.graphql", "type Query {\n  ping: String\n}\n")

	ch := make(chan pipeline.Event, 64)
	_, err := LintFiles(context.Background(), source.NewFileSet(), []string{path}, Options{
		Now:  testNow,
		Sink: pipeline.ChannelSink{Ch: ch},
	})
	if err != nil {
		t.Fatalf("LintFiles: %v", err)
	}
	close(ch)

	stages := make(map[pipeline.Stage]bool)
	var last pipeline.Event
	for evt := range ch {
		if evt.File != path {
			t.Errorf("event file = %q, want %q", evt.File, path)
		}
		stages[evt.Stage] = true
		last = evt
	}
	for _, stage := range []pipeline.Stage{pipeline.StageLoad, pipeline.StageParse, pipeline.StageLint} {
		if !stages[stage] {
			t.Errorf("missing events for stage %q", stage)
		}
	}
	if last.Stage != pipeline.StageLint || last.Status != pipeline.StatusDone {
		t.Errorf("final event = %+v, want lint/done", last)
	}
}

func TestLintFile(t *testing.T) {
	tmp := t.TempDir()
	path := writeSchema(t, tmp, "s.graphql", "type User {\n  firstname: String @deprecated\n}\n")

	res, err := LintFile(context.Background(), source.NewFileSet(), path, Options{Now: testNow})
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	if res.Path != path {
		t.Errorf("path = %q", res.Path)
	}
	if res.Bag.Len() != 1 {
		t.Errorf("diagnostics = %d, want 1", res.Bag.Len())
	}
}
