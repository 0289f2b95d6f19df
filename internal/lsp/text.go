package lsp

import (
	"strings"

	"ably/internal/source"
)

// bufferFile indexes an editor buffer. Buffers are already UTF-8, so only
// line endings are normalized; CRLF removal keeps every line/character
// position the editor reports intact.
func bufferFile(path, text string) (*source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	flags := source.FileVirtual
	if strings.Contains(text, "\r\n") {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		flags |= source.FileNormalizedCRLF
	}
	id := fs.Add(path, []byte(text), flags)
	return fs, id
}

func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		fs := source.NewFileSet()
		doc := fs.Get(fs.AddVirtual("buffer", []byte(text)))
		start := int(doc.Offset(change.Range.Start))
		end := int(doc.Offset(change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}
