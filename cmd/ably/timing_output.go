package main

import (
	"fmt"
	"io"

	"ably/internal/diagfmt"
	"ably/internal/engine"
	"ably/internal/observ"
	"ably/internal/source"
)

// printTimings writes the phase table of every checked document.
func printTimings(out io.Writer, results []engine.FileResult, fs *source.FileSet) {
	if out == nil {
		return
	}
	var total float64
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		fmt.Fprintf(out, "%s (pass %s)\n", diagfmt.DisplayPath(fs, r.Result.File, diagfmt.PathModeAuto), r.Result.PassID)
		fmt.Fprint(out, observ.FormatReport(r.Result.Timings))
		total += r.Result.Timings.TotalMS
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "checked %d documents, %.1f ms in passes\n", len(results), total)
	}
}
