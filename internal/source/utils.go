package source

import (
	"bytes"
	"path/filepath"
	"sort"
)

var (
	crlf    = []byte("\r\n")
	lf      = []byte("\n")
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// normalizeCRLF rewrites every \r\n pair to \n. A lone \r is data, not a
// line break, and passes through. The second result reports a change.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, crlf) {
		return content, false
	}
	return bytes.ReplaceAll(content, crlf, lf), true
}

// removeBOM strips a leading UTF-8 byte order mark.
func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):], true
	}
	return content, false
}

// buildLineIndex records the byte offset of every \n in content.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 64)
	base := 0
	for {
		i := bytes.IndexByte(content[base:], '\n')
		if i < 0 {
			return out
		}
		out = append(out, uint32(base+i))
		base += i + 1
	}
}

// toLineCol turns a byte offset into a 1-based line/column pair. The number
// of newlines strictly before the offset is the zero-based line; a newline
// byte itself still belongs to the line it terminates.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	before := sort.Search(len(lineIdx), func(i int) bool {
		return lineIdx[i] >= off
	})
	if before == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	lineStart := lineIdx[before-1] + 1
	return LineCol{Line: uint32(before) + 1, Col: off - lineStart + 1}
}

// normalizePath picks one canonical shape so map keys and diffs agree across
// platforms.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
