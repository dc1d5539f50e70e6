package fix

import (
	"fmt"
	"os"
	"sort"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// editLog keeps the edits already applied to one file, ordered by original
// start offset. It answers how far a pre-edit position has drifted.
type editLog []diag.TextEdit

// shift maps a position in the original content to the same position in the
// patched content, accounting for every logged edit that ends at or before
// it.
func (l editLog) shift(pos int) int {
	delta := 0
	for _, e := range l {
		if int(e.Span.Start) > pos {
			break
		}
		if int(e.Span.End) <= pos {
			delta += len(e.NewText) - int(e.Span.End-e.Span.Start)
		}
	}
	return pos + delta
}

// record inserts the edit keeping the log ordered by (Start, End).
func (l editLog) record(e diag.TextEdit) editLog {
	at := sort.Search(len(l), func(i int) bool {
		if l[i].Span.Start == e.Span.Start {
			return l[i].Span.End >= e.Span.End
		}
		return l[i].Span.Start > e.Span.Start
	})
	l = append(l, diag.TextEdit{})
	copy(l[at+1:], l[at:])
	l[at] = e
	return l
}

func (l editLog) conflictsWith(edits []diag.TextEdit) bool {
	for _, logged := range l {
		for _, e := range edits {
			if spansConflict(logged, e) {
				return true
			}
		}
	}
	return false
}

// patchSession accumulates buffered edits across fixes and writes them out
// once at the end, so a half-applicable fix never leaves a file torn.
type patchSession struct {
	fs      *source.FileSet
	baseDir string
	text    map[source.FileID][]byte
	logs    map[source.FileID]editLog
	counts  map[source.FileID]int
}

func newPatchSession(fs *source.FileSet) *patchSession {
	return &patchSession{
		fs:      fs,
		baseDir: fs.BaseDir(),
		text:    make(map[source.FileID][]byte),
		logs:    make(map[source.FileID]editLog),
		counts:  make(map[source.FileID]int),
	}
}

// content returns the current buffered content of the file, falling back to
// the loaded bytes for files the session has not touched yet.
func (s *patchSession) content(id source.FileID) []byte {
	if buf, ok := s.text[id]; ok {
		return buf
	}
	return s.fs.Get(id).Content
}

// stage applies one fix to the session buffers. All of the fix's edits land
// or none do; a failure reports the first reason encountered.
func (s *patchSession) stage(cand candidate) (AppliedFix, *SkippedFix) {
	perFile := splitByFile(cand.fix.Edits)

	staged := make(map[source.FileID][]byte, len(perFile))
	stagedLogs := make(map[source.FileID]editLog, len(perFile))
	total := 0

	for id, edits := range perFile {
		file := s.fs.Get(id)
		if file.Flags&source.FileVirtual != 0 {
			return AppliedFix{}, s.skip(cand, "target file is virtual")
		}
		if s.logs[id].conflictsWith(edits) {
			reason := fmt.Sprintf("conflicts with previously applied edits in %s",
				file.FormatPath("auto", s.baseDir))
			return AppliedFix{}, s.skip(cand, reason)
		}

		// Work back to front so earlier spans keep their offsets while the
		// tail of the buffer moves.
		sort.SliceStable(edits, func(i, j int) bool {
			if edits[i].Span.Start == edits[j].Span.Start {
				return edits[i].Span.End > edits[j].Span.End
			}
			return edits[i].Span.Start > edits[j].Span.Start
		})

		buf := append([]byte(nil), s.content(id)...)
		log := append(editLog(nil), s.logs[id]...)

		for _, edit := range edits {
			start := log.shift(int(edit.Span.Start))
			end := log.shift(int(edit.Span.End))
			if start < 0 || end < start || end > len(buf) {
				return AppliedFix{}, s.skip(cand, "edit span out of range")
			}
			if edit.OldText != "" && string(buf[start:end]) != edit.OldText {
				return AppliedFix{}, s.skip(cand, "existing text does not match expected content")
			}
			rest := append([]byte(nil), buf[end:]...)
			buf = append(append(buf[:start], edit.NewText...), rest...)
			log = log.record(edit)
		}

		staged[id] = buf
		stagedLogs[id] = log
		total += len(edits)
	}

	for id, buf := range staged {
		s.text[id] = buf
		s.logs[id] = stagedLogs[id]
		s.counts[id] += len(perFile[id])
	}

	return AppliedFix{
		ID:            cand.fix.ID,
		Title:         cand.fix.Title,
		Code:          cand.diag.Code,
		Message:       cand.diag.Message,
		Applicability: cand.fix.Applicability,
		PrimaryPath:   s.pathOf(cand.diag.Primary.File),
		EditCount:     total,
	}, nil
}

func (s *patchSession) skip(cand candidate, reason string) *SkippedFix {
	return &SkippedFix{ID: cand.fix.ID, Title: cand.fix.Title, Reason: reason}
}

// flush writes every touched buffer back to disk and reports the per-file
// change summary. With dryRun the summary is computed but nothing is
// written. When no fix made it through staging there is nothing to report.
func (s *patchSession) flush(dryRun, anyApplied bool) ([]FileChange, error) {
	if !anyApplied || len(s.text) == 0 {
		return nil, nil
	}

	changes := make([]FileChange, 0, len(s.text))
	for id, buf := range s.text {
		file := s.fs.Get(id)
		if !dryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, buf, mode); err != nil {
				return changes, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}
		changes = append(changes, FileChange{
			Path:      file.FormatPath("relative", s.baseDir),
			EditCount: s.counts[id],
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}

func (s *patchSession) pathOf(id source.FileID) string {
	file := s.fs.Get(id)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", s.baseDir)
}

// splitByFile buckets a fix's edits per target file, copying each edit so
// later in-place sorting never aliases the diagnostic's slice.
func splitByFile(edits []diag.TextEdit) map[source.FileID][]diag.TextEdit {
	buckets := make(map[source.FileID][]diag.TextEdit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], diag.TextEdit{
			Span:    edit.Span,
			NewText: edit.NewText,
			OldText: edit.OldText,
		})
	}
	return buckets
}
