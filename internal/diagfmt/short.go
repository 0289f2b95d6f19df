package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"ably/internal/diag"
	"ably/internal/source"
)

// writeShort prints "severity CODE path:line:col message [source]", one diagnostic per
// line; notes follow indented when includeNotes is set.
func writeShort(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, includeNotes bool) error {
	for i := range diags {
		d := &diags[i]
		sev := strings.ToLower(d.Severity.String())
		line := fmt.Sprintf("%s %s %s %s", sev, d.Code.ID(), shortLocation(fs, d.Primary), oneLine(d.Message))
		if d.Source != "" {
			line += " [" + d.Source + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  note %s %s\n", shortLocation(fs, n.Span), oneLine(n.Msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func shortLocation(fs *source.FileSet, span source.Span) string {
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

// сообщения валидаторов бывают многострочными
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
