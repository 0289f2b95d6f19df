package diag

import (
	"ably/internal/source"
)

// Note carries related information; the engine uses notes for suggestions.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Rule     string // идентификатор правила внешнего валидатора
	Source   string // WCAG citation, "WCAG <version> | <criteria>"
	Message  string
	Primary  source.Span
	Notes    []Note
}

// Suggestions returns the note messages in order.
func (d Diagnostic) Suggestions() []string {
	out := make([]string, 0, len(d.Notes))
	for _, n := range d.Notes {
		out = append(out, n.Msg)
	}
	return out
}
