package source

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// LineCount returns the number of lines in the document.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// lineBounds returns [start, end) of a zero-based line, end excluding '\n'.
func (f *File) lineBounds(line int) (start, end uint32) {
	contentLen := safeUint32(len(f.Content))
	if line > 0 {
		start = f.LineIdx[line-1] + 1
	}
	end = contentLen
	if line < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	if start > end {
		start = end
	}
	return start, end
}

// Offset converts a zero-based line / UTF-16 position into a byte offset.
// Positions past the end of a line clamp to the line end, lines past the end
// of the document clamp to the document end.
func (f *File) Offset(pos Position) uint32 {
	if f == nil || pos.Line < 0 || len(f.Content) == 0 {
		return 0
	}
	if pos.Line >= f.LineCount() {
		return safeUint32(len(f.Content))
	}
	lineStart, lineEnd := f.lineBounds(pos.Line)
	if pos.Character <= 0 {
		return lineStart
	}
	units := 0
	off := lineStart
	for off < lineEnd {
		r, size := utf8.DecodeRune(f.Content[off:lineEnd])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
		if units == pos.Character {
			break
		}
	}
	return off
}

// Position converts a byte offset into a zero-based line / UTF-16 position.
func (f *File) Position(offset uint32) Position {
	if f == nil {
		return Position{}
	}
	contentLen := safeUint32(len(f.Content))
	if offset > contentLen {
		offset = contentLen
	}
	lineIdx := f.LineIdx
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	if lineStart > offset {
		lineStart = offset
	}
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:offset])
		if off+safeUint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return Position{Line: line, Character: units}
}

// RuneOffsets maps rune indices of text to byte offsets; the extra last
// entry maps len(runes) to len(text).
func RuneOffsets(text string) []uint32 {
	out := make([]uint32, 0, len(text)+1)
	for i := range text {
		out = append(out, safeUint32(i))
	}
	return append(out, safeUint32(len(text)))
}
