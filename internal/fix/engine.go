package fix

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// ErrNoFixes reports that selection produced nothing to apply.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode picks which of the gathered fixes get applied.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions steers Apply.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun reports what would change without writing anything.
	DryRun bool
}

// AppliedFix describes one fix that made it into a buffer.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix names a fix that was passed over and why.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange counts the edits that landed in one file.
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult is the full outcome of one Apply call.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to opts,
// and applies them. The result is never nil; callers read Skipped for the
// per-fix reasons even when the returned error is ErrNoFixes.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     []AppliedFix{},
		Skipped:     []SkippedFix{},
		FileChanges: []FileChange{},
	}
	if fs == nil {
		return result, fmt.Errorf("fix: nil file set")
	}

	candidates, gatherSkips := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, gatherSkips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)

	selected, selectionSkips := pickCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	session := newPatchSession(fs)
	for _, cand := range selected {
		applied, skip := session.stage(cand)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		result.Applied = append(result.Applied, applied)
	}

	changes, err := session.flush(opts.DryRun, len(result.Applied) > 0)
	result.FileChanges = append(result.FileChanges, changes...)
	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// skipFor records why a fix was passed over.
func skipFor(f diag.Fix, reason string) SkippedFix {
	return SkippedFix{ID: f.ID, Title: f.Title, Reason: reason}
}

// gatherCandidates flattens diagnostics into fix candidates.
//
// A fix without edits is skipped and recorded. A fix without an ID gets one
// synthesized from the diagnostic code, file, start offset and fix index, so
// `fix --id` can always address it. A repeated ID is skipped: an ID must
// target exactly one candidate. The order field preserves input order for
// the stable sort that follows.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var (
		cands []candidate
		skips []SkippedFix
	)
	seen := make(map[string]bool)

	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			if len(f.Edits) == 0 {
				skips = append(skips, skipFor(f, "fix has no edits"))
				continue
			}
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if seen[f.ID] {
				skips = append(skips, skipFor(f, "duplicate fix id"))
				continue
			}
			seen[f.ID] = true
			cands = append(cands, candidate{diag: d, fix: f, order: len(cands)})
		}
	}
	return cands, skips
}

// sortCandidates orders candidates deterministically: by file, span start,
// span end, input order, code, preferred-first, ID, title. The first keys
// make edits land front-to-back within a file; the tail keys only break
// ties between fixes attached to the same span.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		switch {
		case a.diag.Primary.File != b.diag.Primary.File:
			return a.diag.Primary.File < b.diag.Primary.File
		case a.diag.Primary.Start != b.diag.Primary.Start:
			return a.diag.Primary.Start < b.diag.Primary.Start
		case a.diag.Primary.End != b.diag.Primary.End:
			return a.diag.Primary.End < b.diag.Primary.End
		case a.order != b.order:
			return a.order < b.order
		case a.diag.Code != b.diag.Code:
			return a.diag.Code < b.diag.Code
		case a.fix.IsPreferred != b.fix.IsPreferred:
			return a.fix.IsPreferred
		case a.fix.ID != b.fix.ID:
			return a.fix.ID < b.fix.ID
		default:
			return a.fix.Title < b.fix.Title
		}
	})
}

// pickCandidates narrows the sorted candidates to the set the mode allows.
func pickCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		i := slices.IndexFunc(candidates, func(c candidate) bool {
			return c.fix.ID == opts.TargetID
		})
		if i < 0 {
			return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
		}
		return candidates[i : i+1], nil

	case ApplyModeAll:
		// Batch mode refuses anything short of ALWAYS_SAFE; the user did
		// not get to look at each site.
		var keep []candidate
		var skips []SkippedFix
		for _, cand := range candidates {
			if cand.fix.Applicability != diag.FixApplicabilityAlwaysSafe {
				skips = append(skips, skipFor(cand.fix, fmt.Sprintf("applicability is %s", cand.fix.Applicability)))
				continue
			}
			keep = append(keep, cand)
		}
		return keep, skips

	case ApplyModeOnce:
		// Single-shot mode takes the first ALWAYS_SAFE fix, or the first
		// candidate of any applicability when no safe one exists.
		i := slices.IndexFunc(candidates, func(c candidate) bool {
			return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe
		})
		if i < 0 {
			i = 0
		}
		return candidates[i : i+1], nil

	default:
		return nil, nil
	}
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length edits
// (Start == End) never conflict. A zero-length edit conflicts with a non-zero
// span if its position is within that span (Start <= pos < End). For two
// non-zero spans, any overlap yields a conflict.
func spansConflict(a, b diag.TextEdit) bool {
	// Normalize so that when exactly one edit is an insert, it is `a`.
	if b.Span.Start == b.Span.End {
		a, b = b, a
	}
	if a.Span.Start == a.Span.End {
		if b.Span.Start == b.Span.End {
			return false
		}
		return b.Span.Start <= a.Span.Start && a.Span.Start < b.Span.End
	}
	return a.Span.Start < b.Span.End && b.Span.Start < a.Span.End
}
