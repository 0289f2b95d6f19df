package diagfmt

import (
	"encoding/json"
	"io"

	"ably/internal/diag"
	"ably/internal/engine"
	"ably/internal/score"
	"ably/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string     `json:"file"`
	StartByte uint32     `json:"start_byte"`
	EndByte   uint32     `json:"end_byte"`
	StartLine uint32     `json:"start_line,omitempty"`
	StartCol  uint32     `json:"start_col,omitempty"`
	EndLine   uint32     `json:"end_line,omitempty"`
	EndCol    uint32     `json:"end_col,omitempty"`
	Range     *RangeJSON `json:"range,omitempty"`
}

// RangeJSON is the zero-based UTF-16 range editors use.
type RangeJSON struct {
	Start source.Position `json:"start"`
	End   source.Position `json:"end"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Rule     string       `json:"rule,omitempty"`
	Source   string       `json:"source,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON groups the output of one document.
type FileJSON struct {
	Path        string           `json:"path"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Score       *score.Score     `json:"score,omitempty"`
	Exhausted   bool             `json:"exhausted,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Files []FileJSON `json:"files"`
	Count int        `json:"count"`
	Score int        `json:"score"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)
	loc := LocationJSON{
		File:      DisplayPath(fs, f, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}

	// Добавляем позиции строк/колонок если требуется
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
		loc.Range = &RangeJSON{Start: f.Position(span.Start), End: f.Position(span.End)}
	}

	return loc
}

func buildDiagnostic(d *diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Rule:     d.Rule,
		Source:   d.Source,
		Message:  d.Message,
		Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
	}
	if opts.IncludeNotes && len(d.Notes) > 0 {
		out.Notes = make([]NoteJSON, len(d.Notes))
		for j, note := range d.Notes {
			out.Notes[j] = NoteJSON{
				Message:  note.Msg,
				Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
			}
		}
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(results []engine.FileResult, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	output := DiagnosticsOutput{Files: make([]FileJSON, 0, len(results))}
	for _, fr := range results {
		fj := FileJSON{Path: fr.Path, Diagnostics: []DiagnosticJSON{}}
		if fr.Err != nil {
			fj.Error = fr.Err.Error()
			output.Files = append(output.Files, fj)
			continue
		}
		res := fr.Result
		if res == nil {
			continue
		}
		fj.Path = DisplayPath(fs, res.File, opts.PathMode)
		items := res.Diagnostics
		if opts.Max > 0 && opts.Max < len(items) {
			items = items[:opts.Max]
		}
		for i := range items {
			fj.Diagnostics = append(fj.Diagnostics, buildDiagnostic(&items[i], fs, opts))
		}
		fj.Count = len(fj.Diagnostics)
		fj.Exhausted = res.Exhausted
		if opts.IncludeScore {
			sc := res.Score
			fj.Score = &sc
		}
		output.Count += fj.Count
		output.Score += res.Score.Total
		output.Files = append(output.Files, fj)
	}
	return output
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, results []engine.FileResult, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(results, fs, opts))
}
