package source

type (
	// FileID uniquely identifies a document version within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a document.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the document was added from memory (editor buffer, stdin, test).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileTranscoded marks documents decoded from a non-UTF-8 charset.
	FileTranscoded
)

// File captures metadata and content for a single document.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a document.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, bytes
}

// Position is a zero-based line and UTF-16 code unit column, the coordinate
// system editors and the markup validators report in.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Less orders positions by line, then character.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}
