package rules

import (
	"time"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

// Context carries the per-run inputs rules read: the file set for source
// text access, the wall-clock instant sampled once per run (UTC), and the
// destination sink. Rules never see the sink directly; the engine
// materializes their findings into it.
type Context struct {
	FileSet *source.FileSet
	Now     time.Time

	sink diag.Reporter
}

// NewContext builds a run context reporting into bag. The instant is
// normalized to UTC so date comparisons are calendar-stable regardless of
// the host clock's zone. Duplicate findings (same code, span, and message)
// are suppressed on the way in.
func NewContext(fileSet *source.FileSet, now time.Time, bag *diag.Bag) *Context {
	return &Context{
		FileSet: fileSet,
		Now:     now.UTC(),
		sink:    diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
	}
}
