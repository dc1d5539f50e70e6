package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// LocationJSON is a file location in JSON output. Byte offsets are always
// present; line/col pairs appear only with JSONOpts.IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a secondary annotation attached to a diagnostic.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON is a single text edit of a fix.
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON is a suggested correction for a diagnostic.
type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string            `json:"severity"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Location LocationJSON      `json:"location"`
	Params   map[string]string `json:"params,omitempty"`
	Notes    []NoteJSON        `json:"notes,omitempty"`
	Fixes    []FixJSON         `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root document of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// jsonEmitter threads the FileSet and options through document assembly.
type jsonEmitter struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (e jsonEmitter) location(span source.Span) LocationJSON {
	f := e.fs.Get(span.File)
	loc := LocationJSON{
		File:      formatPath(f, e.fs, e.opts.PathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if e.opts.IncludePositions {
		from, to := e.fs.Resolve(span)
		loc.StartLine, loc.StartCol = from.Line, from.Col
		loc.EndLine, loc.EndCol = to.Line, to.Col
	}
	return loc
}

func (e jsonEmitter) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: e.location(d.Primary),
		Params:   d.Params,
	}
	if e.opts.IncludeNotes {
		for _, note := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{
				Message:  note.Msg,
				Location: e.location(note.Span),
			})
		}
	}
	if e.opts.IncludeFixes && len(d.Fixes) > 0 {
		out.Fixes = e.fixes(d.Fixes)
	}
	return out
}

// fixes renders the fix list in presentation order: preferred fixes first,
// then by ascending applicability, kind, title, ID.
func (e jsonEmitter) fixes(fixes []diag.Fix) []FixJSON {
	ordered := append([]diag.Fix(nil), fixes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]
		switch {
		case a.IsPreferred != b.IsPreferred:
			return a.IsPreferred
		case a.Applicability != b.Applicability:
			return a.Applicability < b.Applicability
		case a.Kind != b.Kind:
			return a.Kind < b.Kind
		case a.Title != b.Title:
			return a.Title < b.Title
		default:
			return a.ID < b.ID
		}
	})

	out := make([]FixJSON, 0, len(ordered))
	for i := range ordered {
		fix := &ordered[i]
		out = append(out, FixJSON{
			ID:            fix.ID,
			Title:         fix.Title,
			Kind:          fix.Kind.String(),
			Applicability: fix.Applicability.String(),
			IsPreferred:   fix.IsPreferred,
			Edits:         e.edits(fix.Edits),
		})
	}
	return out
}

func (e jsonEmitter) edits(edits []diag.TextEdit) []FixEditJSON {
	if len(edits) == 0 {
		return nil
	}
	out := make([]FixEditJSON, 0, len(edits))
	for _, edit := range edits {
		item := FixEditJSON{
			Location: e.location(edit.Span),
			NewText:  edit.NewText,
			OldText:  edit.OldText,
		}
		if e.opts.IncludePreviews {
			if preview, err := buildFixEditPreview(e.fs, edit); err == nil {
				item.BeforeLines = append([]string(nil), preview.before...)
				item.AfterLines = append([]string(nil), preview.after...)
			}
		}
		out = append(out, item)
	}
	return out
}

// BuildDiagnosticsOutput assembles the JSON output document without
// serialising it. Opts.Max truncates the output while the Bag keeps
// everything.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	e := jsonEmitter{fs: fs, opts: opts}

	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}

	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items))}
	for i := range items {
		out.Diagnostics = append(out.Diagnostics, e.diagnostic(&items[i]))
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON renders diagnostics as an indented JSON document with full location,
// note, and fix information.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	default:
		return f.Path
	}
}
