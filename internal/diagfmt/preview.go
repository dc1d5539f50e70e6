package diagfmt

import (
	"fmt"
	"strings"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// fixEditPreview holds the physical lines touched by an edit, before and
// after the edit is applied.
type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the edit against the lines it spans. The
// preview block covers whole lines, from the start of the first spanned
// line to the end of the last one.
func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}

	from, to := fs.Resolve(edit.Span)
	blockStart, blockEnd := previewBlock(file, from.Line, to.Line)

	block := file.Content[blockStart:blockEnd]
	relStart := int(edit.Span.Start) - blockStart
	relEnd := int(edit.Span.End) - blockStart
	if relStart < 0 || relStart > len(block) || relEnd < relStart || relEnd > len(block) {
		return fixEditPreview{}, fmt.Errorf("edit span %d..%d outside preview block", edit.Span.Start, edit.Span.End)
	}

	patched := make([]byte, 0, len(block)+len(edit.NewText))
	patched = append(patched, block[:relStart]...)
	patched = append(patched, edit.NewText...)
	patched = append(patched, block[relEnd:]...)

	return fixEditPreview{
		before: previewLines(block),
		after:  previewLines(patched),
	}, nil
}

// previewBlock returns the byte range of the physical lines from startLine
// through endLine, including the trailing newline of the last line.
func previewBlock(f *source.File, startLine, endLine uint32) (int, int) {
	if endLine < startLine {
		endLine = startLine
	}

	start := 0
	if startLine > 1 {
		if idx := int(startLine) - 2; idx < len(f.LineIdx) {
			start = int(f.LineIdx[idx]) + 1
		} else {
			start = len(f.Content)
		}
	}

	end := len(f.Content)
	if endLine >= 1 {
		if idx := int(endLine) - 1; idx < len(f.LineIdx) {
			end = int(f.LineIdx[idx]) + 1
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

// previewLines cuts a block into lines, dropping the trailing newline so a
// final blank diff line does not appear in previews.
func previewLines(block []byte) []string {
	if len(block) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(block), "\n"), "\n")
}
