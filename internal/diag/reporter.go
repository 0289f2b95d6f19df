package diag

import "ably/internal/source"

// Reporter: минимальный контракт получения диагностик от анализаторов.
// Report returns false when the diagnostic was not accepted (budget exhausted).
type Reporter interface {
	Report(d Diagnostic) bool
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
	accepted bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, primary, msg),
	}
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// WithSource sets the WCAG citation.
func (b *ReportBuilder) WithSource(citation string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Source = citation
	return b
}

// WithRule sets the external rule identifier.
func (b *ReportBuilder) WithRule(rule string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Rule = rule
	return b
}

// Emit sends diagnostic to underlying reporter exactly once and reports
// whether it was accepted.
func (b *ReportBuilder) Emit() bool {
	if b == nil {
		return false
	}
	if b.emitted {
		return b.accepted
	}
	b.emitted = true
	if b.reporter != nil {
		b.accepted = b.reporter.Report(b.diag)
	}
	return b.accepted
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) bool {
	if r.Bag == nil {
		return false
	}
	return r.Bag.Add(d)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic) bool

func (f ReporterFunc) Report(d Diagnostic) bool { return f(d) }
