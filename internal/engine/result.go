package engine

import (
	"ably/internal/diag"
	"ably/internal/observ"
	"ably/internal/score"
	"ably/internal/source"
)

// Result is the outcome of one pass over one document.
type Result struct {
	PassID      string
	File        *source.File
	Diagnostics []diag.Diagnostic // sorted, duplicates removed
	Score       score.Score
	// Exhausted is set when the problem budget stopped the pass early.
	Exhausted bool
	Timings   observ.Report
}

// Stream returns the diagnostics followed by the score, the shape hosts
// deliver to their consumer.
func (r *Result) Stream() []any {
	if r == nil {
		return nil
	}
	out := make([]any, 0, len(r.Diagnostics)+1)
	for _, d := range r.Diagnostics {
		out = append(out, d)
	}
	return append(out, r.Score)
}

// CountBySource groups the diagnostics by citation.
func (r *Result) CountBySource() map[string]int {
	out := make(map[string]int)
	if r == nil {
		return out
	}
	for _, d := range r.Diagnostics {
		out[d.Source]++
	}
	return out
}
