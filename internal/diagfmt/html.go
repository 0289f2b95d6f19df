package diagfmt

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ably/internal/engine"
	"ably/internal/source"
	"ably/internal/wcag"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #1b1b1b; background: #ffffff; }
code { background: #f2f2f2; padding: 0 .2rem; }
li { margin-bottom: .4rem; }
</style>
</head>
<body>
`

// HTML writes a standalone report page. The body is produced as Markdown
// and rendered with goldmark; document text is escaped, never passed through.
func HTML(w io.Writer, results []engine.FileResult, fs *source.FileSet, opts HTMLOpts) error {
	title := opts.Title
	if title == "" {
		title = "Accessibility report"
	}
	md := ReportMarkdown(results, fs, title, opts.PathMode)

	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(title)); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// ReportMarkdown renders the results as a Markdown document.
func ReportMarkdown(results []engine.FileResult, fs *source.FileSet, title string, mode PathMode) string {
	var b strings.Builder
	problems, score := 0, 0
	for _, fr := range results {
		if fr.Result != nil {
			problems += len(fr.Result.Diagnostics)
			score += fr.Result.Score.Total
		}
	}
	fmt.Fprintf(&b, "# %s\n\n", mdEscape(title))
	fmt.Fprintf(&b, "**%d** problems in **%d** files, total score **%d**.\n\n", problems, len(results), score)

	for _, fr := range results {
		if fr.Err != nil {
			fmt.Fprintf(&b, "## %s\n\nCould not be checked: %s\n\n", mdEscape(fr.Path), mdEscape(fr.Err.Error()))
			continue
		}
		res := fr.Result
		if res == nil {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", mdEscape(DisplayPath(fs, res.File, mode)))
		fmt.Fprintf(&b, "Score: **%d**", res.Score.Total)
		if res.Exhausted {
			b.WriteString(" (problem limit reached, later findings omitted)")
		}
		b.WriteString("\n\n")
		if len(res.Diagnostics) == 0 {
			b.WriteString("No problems found.\n\n")
			continue
		}
		for i := range res.Diagnostics {
			d := &res.Diagnostics[i]
			start, _ := fs.Resolve(d.Primary)
			fmt.Fprintf(&b, "- `%s` line %d, column %d: %s\n", d.Code.ID(), start.Line, start.Col,
				mdEscape(strings.Join(strings.Fields(d.Message), " ")))
			for _, n := range d.Notes {
				fmt.Fprintf(&b, "  - Suggestion: %s\n", mdEscape(n.Msg))
			}
			if d.Source != "" {
				if u := wcag.ParseCitation(d.Source).URL(); u != "" {
					fmt.Fprintf(&b, "  - Source: [%s](%s)\n", mdEscape(d.Source), u)
				} else {
					fmt.Fprintf(&b, "  - Source: %s\n", mdEscape(d.Source))
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// mdEscape backslash-escapes ASCII punctuation so text renders literally.
func mdEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'=:;/?@$%^,", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
