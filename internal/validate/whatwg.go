package validate

import (
	"ably/internal/diag"
	"ably/internal/source"
	"ably/internal/wcag"
)

// EmitWHATWG maps html-validate messages through the WHATWG dictionary and
// reports them in message order. Unknown rule ids are dropped. A message is
// skipped when a diagnostic with the same start position and text is already
// in existing or was emitted earlier in this call. It returns the number of
// accepted diagnostics and stops at the first rejection.
func EmitWHATWG(file *source.File, msgs []WHATWGMessage, existing []diag.Diagnostic, r diag.Reporter) int {
	type seenKey struct {
		pos source.Position
		msg string
	}
	seen := make(map[seenKey]bool, len(existing))
	for _, d := range existing {
		if d.Primary.File != file.ID {
			continue
		}
		seen[seenKey{file.Position(d.Primary.Start), d.Message}] = true
	}

	accepted := 0
	for _, m := range msgs {
		mapping, ok := wcag.LookupWHATWG(m.RuleID)
		if !ok {
			continue
		}
		start := source.Position{Line: m.Line - 1, Character: m.Column - 1}
		end := source.Position{Line: m.Line - 1, Character: m.Column - 1 + m.Size}
		key := seenKey{start, mapping.ErrorMessage}
		if seen[key] {
			continue
		}
		seen[key] = true

		sp := rangeSpan(file, start, end)
		ok = diag.ReportWarning(r, diag.WhaMapped, sp, mapping.ErrorMessage).
			WithSource(mapping.Citation).
			WithRule(m.RuleID).
			WithNote(sp, mapping.Suggestion).
			Emit()
		if !ok {
			break
		}
		accepted++
	}
	return accepted
}

// rangeSpan converts an editor range into a byte span; end never precedes
// start.
func rangeSpan(file *source.File, start, end source.Position) source.Span {
	s, e := file.Offset(start), file.Offset(end)
	if e < s {
		e = s
	}
	return source.Span{File: file.ID, Start: s, End: e}
}
