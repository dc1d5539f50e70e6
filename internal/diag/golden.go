package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"sdlint/internal/source"
)

// shortEntry is one line of the short format: severity, code, location,
// flattened message.
type shortEntry struct {
	path     string
	line     uint32
	col      uint32
	severity string
	code     string
	message  string
}

// FormatShortDiagnostics renders diagnostics into a stable, one-line-per-entry
// representation used by the CLI short format and by golden tests. Entries are
// sorted deterministically; the result is empty when nothing remains.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	entries := make([]shortEntry, 0, len(diags))
	for i := range diags {
		entries = appendEntries(entries, &diags[i], fs, includeNotes)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		switch {
		case a.path != b.path:
			return a.path < b.path
		case a.line != b.line:
			return a.line < b.line
		case a.col != b.col:
			return a.col < b.col
		case a.severity != b.severity:
			return a.severity < b.severity
		case a.code != b.code:
			return a.code < b.code
		default:
			return a.message < b.message
		}
	})

	var b strings.Builder
	for i := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		e := &entries[i]
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", e.severity, e.code, e.path, e.line, e.col, e.message)
	}
	return b.String()
}

// appendEntries adds the primary line of d and, when requested, one line per
// note. Notes render with severity "note" and inherit the diagnostic's code.
func appendEntries(out []shortEntry, d *Diagnostic, fs *source.FileSet, includeNotes bool) []shortEntry {
	if e, ok := locate(fs, d.Primary); ok {
		e.severity = shortSeverity(d.Severity)
		e.code = d.Code.ID()
		e.message = flatten(d.Message)
		out = append(out, e)
	}
	if !includeNotes {
		return out
	}
	for _, note := range d.Notes {
		e, ok := locate(fs, note.Span)
		if !ok {
			continue
		}
		e.severity = "note"
		e.code = d.Code.ID()
		e.message = flatten(note.Msg)
		out = append(out, e)
	}
	return out
}

// locate resolves the span start to a slash-separated relative path and a
// line/column pair. Spans pointing at files the set does not know are
// dropped rather than rendered.
func locate(fs *source.FileSet, span source.Span) (e shortEntry, ok bool) {
	defer func() {
		if recover() != nil {
			e, ok = shortEntry{}, false
		}
	}()

	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)

	path := filepath.ToSlash(file.FormatPath("relative", fs.BaseDir()))
	for strings.HasPrefix(path, "./") {
		path = strings.TrimPrefix(path, "./")
	}
	return shortEntry{path: path, line: start.Line, col: start.Col}, true
}

func shortSeverity(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

// flatten collapses newlines so multi-line messages stay on one entry line.
func flatten(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
