package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns every file a run touches and resolves spans against them.
// IDs are dense indices in load order; the zero ID is the first file, not a
// sentinel.
type FileSet struct {
	files   []File
	index   map[string]FileID
	baseDir string
}

// NewFileSet creates an empty set.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// SetBaseDir fixes the directory relative paths are rendered against.
func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir returns the configured base directory, or the working directory
// when none was set.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add registers already-normalized content under a fresh FileID. Adding the
// same path twice yields two files; the path index tracks the newest one.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	next, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set size overflow: %w", err))
	}
	id := FileID(next)
	clean := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    clean,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[clean] = id
	return id
}

// Load reads a file from disk, strips a BOM, normalizes CRLF, and registers
// the result.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- lint targets come from the manifest and CLI args
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var flags FileFlags
	content, stripped := removeBOM(raw)
	if stripped {
		flags |= FileHadBOM
	}
	content, rewritten := normalizeCRLF(content)
	if rewritten {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual registers in-memory content (stdin, tests, unreadable targets)
// under the FileVirtual flag.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for the ID.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// GetByPath returns the newest file registered under the path.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	id, ok := fs.index[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return &fs.files[id], true
}

// Len returns the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span's offsets into 1-based line/column pairs.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	idx := fs.files[span.File].LineIdx
	return toLineCol(idx, span.Start), toLineCol(idx, span.End)
}

// GetLine returns the 1-based line without its trailing newline. Lines past
// the end of the file come back empty rather than failing.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	line := int(lineNum)
	breaks := f.LineIdx
	size := len(f.Content)

	start := 0
	if line > 1 {
		if line-2 >= len(breaks) {
			return ""
		}
		start = int(breaks[line-2]) + 1
	}
	end := size
	if line-1 < len(breaks) {
		end = int(breaks[line-1])
	}

	if start >= size {
		return ""
	}
	if end > size {
		end = size
	}
	return string(f.Content[start:end])
}

// FormatPath renders the file path according to mode: "absolute",
// "relative" (against baseDir), "basename", or "auto" (short or relative
// paths as is, long absolute paths collapse to the basename).
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		return filepath.ToSlash(abs)

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		rel, err := filepath.Rel(baseDir, f.Path)
		if err != nil {
			return f.Path
		}
		return filepath.ToSlash(rel)

	case "basename":
		return filepath.Base(f.Path)

	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)

	default:
		return f.Path
	}
}
