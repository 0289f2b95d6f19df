package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ably/internal/diag"
	"ably/internal/engine"
	"ably/internal/source"
)

type palette struct {
	warning, error, info, code, path, gutter, caret, note, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		warning: color.New(color.FgYellow, color.Bold),
		error:   color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgBlue, color.Bold),
		code:    color.New(color.Bold),
		path:    color.New(color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgYellow),
		note:    color.New(color.FgCyan),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.warning, p.error, p.info, p.code, p.path, p.gutter, p.caret, p.note, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.error
	case diag.SevWarning:
		return p.warning
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой диагностики печатает
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку документа с подчёркиванием ^^^ по Span, затем Notes и цитату WCAG.
func Pretty(w io.Writer, results []engine.FileResult, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	problems, files := 0, 0
	score := 0
	for _, fr := range results {
		if fr.Err != nil {
			fmt.Fprintf(w, "%s: %s %v\n", p.path.Sprint(fr.Path), p.error.Sprint("ERROR"), fr.Err)
			continue
		}
		res := fr.Result
		if res == nil {
			continue
		}
		files++
		score += res.Score.Total
		problems += len(res.Diagnostics)
		for i := range res.Diagnostics {
			prettyDiagnostic(w, &res.Diagnostics[i], res.File, fs, opts, p)
		}
	}
	if opts.ShowSummary {
		fmt.Fprintln(w, summaryBox(problems, files, score, opts.Color))
	}
}

func prettyDiagnostic(w io.Writer, d *diag.Diagnostic, file *source.File, fs *source.FileSet, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(d.Primary)
	path := DisplayPath(fs, file, opts.PathMode)

	lines := strings.Split(d.Message, "\n")
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
		p.severity(d.Severity).Sprint(strings.ToUpper(d.Severity.String())),
		p.code.Sprint(d.Code.ID()),
		wrap(lines[0], opts.Width))
	for _, extra := range lines[1:] {
		fmt.Fprintf(w, "    %s\n", wrap(extra, opts.Width))
	}

	ctxLines := int(max(opts.Context, 0))
	first := max(int(start.Line)-ctxLines, 1)
	last := min(int(start.Line)+ctxLines, file.LineCount())
	gutterWidth := len(strconv.Itoa(last))
	for ln := first; ln <= last; ln++ {
		text := file.GetLine(uint32(ln))
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), expandTabs(text))
		if ln == int(start.Line) {
			fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), p.caret.Sprint(caretLine(text, start, end)))
		}
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("= help:"), wrap(n.Msg, opts.Width))
		}
	}
	if opts.ShowSource && d.Source != "" {
		fmt.Fprintf(w, "  %s %s\n", p.dim.Sprint("= source:"), d.Source)
	}
	fmt.Fprintln(w)
}

// caretLine underlines [start, end) on the first line of the span. Columns
// are byte based, display width comes from runewidth.
func caretLine(text string, start, end source.LineCol) string {
	startCol := int(start.Col) - 1
	if startCol > len(text) {
		startCol = len(text)
	}
	endCol := len(text)
	if end.Line == start.Line && int(end.Col)-1 < endCol {
		endCol = int(end.Col) - 1
	}
	if endCol < startCol {
		endCol = startCol
	}
	pad := runewidth.StringWidth(expandTabs(text[:startCol]))
	width := runewidth.StringWidth(expandTabs(text[startCol:endCol]))
	if width == 0 {
		width = 1
	}
	return strings.Repeat(" ", pad) + strings.Repeat("^", width)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// wrap breaks s on spaces so no line exceeds width display cells.
func wrap(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	var (
		b    strings.Builder
		line int
	)
	for i, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if i > 0 {
			if line+1+ww > int(width) {
				b.WriteString("\n    ")
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(word)
		line += ww
	}
	return b.String()
}

func summaryBox(problems, files, score int, colored bool) string {
	plural := func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	}
	text := fmt.Sprintf("%d %s in %d %s · score %d",
		problems, plural(problems, "problem", "problems"),
		files, plural(files, "file", "files"),
		score)
	style := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if colored {
		fg := lipgloss.Color("2")
		if problems > 0 {
			fg = lipgloss.Color("3")
		}
		style = style.Foreground(fg).BorderForeground(fg)
	}
	return style.Render(text)
}

// Short renders one line per diagnostic, the format scripts and tests grep.
func Short(w io.Writer, results []engine.FileResult, fs *source.FileSet, includeNotes bool) error {
	for _, fr := range results {
		if fr.Err != nil {
			if _, err := fmt.Fprintf(w, "error %s %v\n", fr.Path, fr.Err); err != nil {
				return err
			}
			continue
		}
		if fr.Result == nil || len(fr.Result.Diagnostics) == 0 {
			continue
		}
		if err := writeShort(w, fr.Result.Diagnostics, fs, includeNotes); err != nil {
			return err
		}
	}
	return nil
}
