package diag

import (
	"sort"

	"sdlint/internal/source"
)

// Bag collects diagnostics up to a fixed capacity.
type Bag struct {
	diags []Diagnostic
	limit uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		diags: make([]Diagnostic, 0, max),
		limit: uint16(max),
	}
}

// Add appends a diagnostic, honouring the capacity limit.
// It returns false when the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.diags) >= int(b.limit) {
		return false
	}
	b.diags = append(b.diags, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.limit }

func (b *Bag) Len() int { return len(b.diags) }

// Items returns the collected diagnostics. The slice aliases the bag's
// internal storage; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.diags }

// HasErrors reports whether at least one diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool { return b.hasAtLeast(SevError) }

// HasWarnings reports whether at least one diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool { return b.hasAtLeast(SevWarning) }

func (b *Bag) hasAtLeast(min Severity) bool {
	for i := range b.diags {
		if b.diags[i].Severity >= min {
			return true
		}
	}
	return false
}

// Merge appends the diagnostics of another bag, growing the capacity when
// needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := uint16(len(b.diags) + len(other.diags)); total > b.limit {
		b.limit = total
	}
	b.diags = append(b.diags, other.diags...)
}

// Sort orders diagnostics by file, start, end, severity (errors first), code
// for a stable, deterministic output order.
func (b *Bag) Sort() {
	sort.SliceStable(b.diags, func(i, j int) bool {
		di, dj := &b.diags[i], &b.diags[j]
		switch {
		case di.Primary.File != dj.Primary.File:
			return di.Primary.File < dj.Primary.File
		case di.Primary.Start != dj.Primary.Start:
			return di.Primary.Start < dj.Primary.Start
		case di.Primary.End != dj.Primary.End:
			return di.Primary.End < dj.Primary.End
		case di.Severity != dj.Severity:
			return di.Severity > dj.Severity
		default:
			return di.Code < dj.Code
		}
	})
}

type bagKey struct {
	code Code
	span source.Span
}

// Dedup drops duplicates sharing the same code and primary span.
func (b *Bag) Dedup() {
	seen := make(map[bagKey]struct{}, len(b.diags))
	kept := b.diags[:0]
	for i := range b.diags {
		key := bagKey{code: b.diags[i].Code, span: b.diags[i].Primary}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, b.diags[i])
	}
	b.diags = kept
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(d *Diagnostic) bool) {
	kept := b.diags[:0]
	for i := range b.diags {
		if keep(&b.diags[i]) {
			kept = append(kept, b.diags[i])
		}
	}
	b.diags = kept
}

// Transform rewrites every diagnostic in place.
func (b *Bag) Transform(f func(d *Diagnostic) *Diagnostic) {
	for i := range b.diags {
		if out := f(&b.diags[i]); out != nil {
			b.diags[i] = *out
		}
	}
}
