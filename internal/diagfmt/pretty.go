package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgCyan)
	fixColor     = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
	gutterColor  = color.New(color.FgHiBlack)
)

type painter struct {
	enabled bool
}

func (p painter) paint(c *color.Color, s string) string {
	if !p.enabled {
		return s
	}
	return c.Sprint(s)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Pretty renders diagnostics for humans. It walks bag.Items() in order
// (callers sort the bag first) and prints, per diagnostic:
//
//	<path>:<line>:<col>: <SEVERITY> <CODE>: <message>
//
// followed by a source excerpt with a caret/tilde underline, then notes and
// fix suggestions when the options ask for them.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := painter{enabled: opts.Color}

	items := bag.Items()
	for i := range items {
		writeDiagnostic(w, &items[i], fs, opts, p)
		if i < len(items)-1 {
			fmt.Fprintln(w)
		}
	}
}

func writeDiagnostic(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p painter) {
	file := fs.Get(d.Primary.File)
	startPos, endPos := fs.Resolve(d.Primary)

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		formatPath(file, fs, opts.PathMode),
		startPos.Line, startPos.Col,
		p.paint(severityColor(d.Severity), d.Severity.String()),
		d.Code.ID(),
		d.Message,
	)

	writeExcerpt(w, file, startPos, endPos, d.Severity, opts, p)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			noteFile := fs.Get(note.Span.File)
			notePos, _ := fs.Resolve(note.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
				p.paint(noteColor, "note:"),
				formatPath(noteFile, fs, opts.PathMode),
				notePos.Line, notePos.Col,
				note.Msg,
			)
		}
	}

	if opts.ShowFixes {
		for i := range d.Fixes {
			writeFix(w, &d.Fixes[i], i+1, fs, opts, p)
		}
	}
}

// writeExcerpt prints the primary line with a caret underline plus
// opts.Context lines of surrounding source.
func writeExcerpt(w io.Writer, file *source.File, startPos, endPos source.LineCol, sev diag.Severity, opts PrettyOpts, p painter) {
	lineText := file.GetLine(startPos.Line)
	if lineText == "" && startPos.Line != 1 {
		return
	}

	ctx := uint32(opts.Context)
	first := uint32(1)
	if startPos.Line > ctx {
		first = startPos.Line - ctx
	}
	last := startPos.Line + ctx
	if maxLine := lastLineNumber(file); last > maxLine {
		last = maxLine
	}

	for line := first; line <= last; line++ {
		text := file.GetLine(line)
		if opts.Width > 0 && len(text) > int(opts.Width) {
			text = text[:opts.Width]
		}
		fmt.Fprintf(w, "%s %s\n", p.paint(gutterColor, fmt.Sprintf("%5d |", line)), text)

		if line == startPos.Line {
			fmt.Fprintf(w, "%s %s\n", p.paint(gutterColor, "      |"), p.paint(severityColor(sev), underline(startPos, endPos, text)))
		}
	}
}

func lastLineNumber(f *source.File) uint32 {
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	return lenLineIdx + 1
}

// underline builds the ^~~~ marker for the span's portion of the first line.
func underline(startPos, endPos source.LineCol, lineText string) string {
	indent := int(startPos.Col) - 1
	if indent < 0 {
		indent = 0
	}
	if indent > len(lineText) {
		indent = len(lineText)
	}

	width := 1
	if endPos.Line == startPos.Line && endPos.Col > startPos.Col {
		width = int(endPos.Col - startPos.Col)
	} else if endPos.Line > startPos.Line {
		width = len(lineText) - indent
	}
	if width < 1 {
		width = 1
	}
	if remaining := len(lineText) - indent; width > remaining && remaining > 0 {
		width = remaining
	}

	return strings.Repeat(" ", indent) + "^" + strings.Repeat("~", width-1)
}

func writeFix(w io.Writer, fix *diag.Fix, number int, fs *source.FileSet, opts PrettyOpts, p painter) {
	head := fmt.Sprintf("fix #%d:", number)
	fmt.Fprintf(w, "  %s %s%s\n", p.paint(fixColor, head), fix.Title, fixBadges(fix))

	for _, edit := range fix.Edits {
		editFile := fs.Get(edit.Span.File)
		editPos, _ := fs.Resolve(edit.Span)
		fmt.Fprintf(w, "    %s:%d:%d: %s\n",
			formatPath(editFile, fs, opts.PathMode),
			editPos.Line, editPos.Col,
			editSummary(editFile, edit),
		)

		if opts.ShowPreview {
			preview, err := buildFixEditPreview(fs, edit)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, line := range preview.before {
				fmt.Fprintf(w, "    %s\n", p.paint(removedColor, "- "+line))
			}
			for _, line := range preview.after {
				fmt.Fprintf(w, "    %s\n", p.paint(addedColor, "+ "+line))
			}
		}
	}
}

func fixBadges(fix *diag.Fix) string {
	badges := make([]string, 0, 2)
	if fix.ID != "" {
		badges = append(badges, "id="+fix.ID)
	}
	if fix.IsPreferred {
		badges = append(badges, "preferred")
	}
	if len(badges) == 0 {
		return ""
	}
	return " [" + strings.Join(badges, ", ") + "]"
}

// editSummary renders what the edit does: apply="…" for insertions and
// replacements, delete="…" for removals.
func editSummary(file *source.File, edit diag.TextEdit) string {
	if edit.NewText != "" {
		return fmt.Sprintf("apply=%q", edit.NewText)
	}
	removed := edit.OldText
	if removed == "" && int(edit.Span.End) <= len(file.Content) && edit.Span.Start <= edit.Span.End {
		removed = string(file.Content[edit.Span.Start:edit.Span.End])
	}
	return fmt.Sprintf("delete=%q", removed)
}
