package source

// FileID indexes a file inside its FileSet. IDs start at zero.
type FileID uint32

// FileFlags records how a file entered the set and what loading did to it.
type FileFlags uint8

const (
	// FileVirtual marks in-memory content: stdin, test fixtures, and
	// placeholders for paths that could not be read.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source file. Content is already normalized; LineIdx
// holds the offset of every newline so positions resolve without rescanning.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based human-readable position.
type LineCol struct {
	Line uint32
	Col  uint32
}
