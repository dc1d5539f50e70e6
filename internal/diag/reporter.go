package diag

import "sdlint/internal/source"

// Reporter is the minimal contract for receiving diagnostics from producers.
// Implementations: BagReporter (collects into a Bag), DedupReporter (dedup
// wrapper).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter adapts a *Bag to the Reporter interface.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// ReportBuilder accumulates diagnostic details before emitting to a Reporter.
// All methods tolerate a nil receiver so call chains never have to guard.
type ReportBuilder struct {
	sink    Reporter
	pending Diagnostic
	sent    bool
}

// NewReportBuilder constructs a builder bound to a Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		sink: r,
		pending: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Primary:  primary,
		},
	}
}

// ReportError starts a builder at error severity.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning starts a builder at warning severity.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// ReportInfo starts a builder at info severity.
func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, primary, msg)
}

func (b *ReportBuilder) mutate(f func(d *Diagnostic)) *ReportBuilder {
	if b != nil {
		f(&b.pending)
	}
	return b
}

// WithParam records a named message parameter on the pending diagnostic.
func (b *ReportBuilder) WithParam(name, value string) *ReportBuilder {
	return b.mutate(func(d *Diagnostic) { *d = d.WithParam(name, value) })
}

// WithNote appends a note to the pending diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	return b.mutate(func(d *Diagnostic) { d.Notes = append(d.Notes, Note{Span: sp, Msg: msg}) })
}

// WithFix appends a ready-to-use fix with default metadata.
func (b *ReportBuilder) WithFix(title string, edits ...TextEdit) *ReportBuilder {
	return b.mutate(func(d *Diagnostic) { *d = d.WithFix(title, edits...) })
}

// WithFixSuggestion appends a configured fix.
func (b *ReportBuilder) WithFixSuggestion(fix Fix) *ReportBuilder {
	return b.mutate(func(d *Diagnostic) { *d = d.WithFixSuggestion(fix) })
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.sink != nil {
		b.sink.Report(b.pending)
	}
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.pending
}
