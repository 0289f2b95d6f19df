// Package testkit holds checks shared by the analyzer and engine tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ably/internal/diag"
	"ably/internal/source"
)

// CheckDiagnostics runs the invariants every pass result must satisfy:
// 1) at most maxProblems diagnostics (maxProblems <= 0 skips the check)
// 2) every primary and note span lies inside the content of sf
// 3) diagnostics are ordered by primary span start, then end
// 4) no two diagnostics share span, citation and message
func CheckDiagnostics(sf *source.File, items []diag.Diagnostic, maxProblems int) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	if maxProblems > 0 && len(items) > maxProblems {
		return fmt.Errorf("%d diagnostics exceed budget %d", len(items), maxProblems)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	type key struct {
		span    source.Span
		cite    string
		message string
	}
	seen := make(map[key]struct{}, len(items))
	var prev source.Span
	for i, d := range items {
		if err := checkSpan(d.Primary, sf.ID, lenContent); err != nil {
			return fmt.Errorf("diagnostic %d (%s): %w", i, d.Code.ID(), err)
		}
		for _, n := range d.Notes {
			if n.Span == (source.Span{}) {
				continue
			}
			if err := checkSpan(n.Span, sf.ID, lenContent); err != nil {
				return fmt.Errorf("diagnostic %d (%s) note: %w", i, d.Code.ID(), err)
			}
		}
		if i > 0 {
			if d.Primary.Start < prev.Start || (d.Primary.Start == prev.Start && d.Primary.End < prev.End) {
				return fmt.Errorf("diagnostic %d at %v is ordered after %v", i, d.Primary, prev)
			}
		}
		prev = d.Primary

		k := key{span: d.Primary, cite: d.Source, message: d.Message}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("diagnostic %d duplicates %v %q", i, d.Primary, d.Message)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func checkSpan(sp source.Span, id source.FileID, lenContent uint32) error {
	if sp.File != id {
		return fmt.Errorf("span file mismatch: got=%d want=%d", sp.File, id)
	}
	if sp.End < sp.Start {
		return fmt.Errorf("inverted span %v", sp)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}
