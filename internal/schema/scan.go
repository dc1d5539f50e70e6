package schema

// Byte-level scanners over the original SDL text. The parser hands out
// positions for names and values only; member extents (everything a delete
// fix must remove, trailing directives included) are recovered here by
// scanning between the anchors the parser provides.

// memberEnd returns the exclusive end offset of the member definition that
// starts at start, scanning at most to limit. The scan tracks bracket depth
// and skips strings, comments, commas and whitespace as trivia. It stops
// early at a closing bracket of the enclosing container and at a depth-zero
// string, which can only be the next member's description: a default value
// string always follows '='.
func memberEnd(content []byte, start, limit int) int {
	if limit > len(content) {
		limit = len(content)
	}
	depth := 0
	end := start
	var prev byte
	i := start
	for i < limit {
		c := content[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case c == '#':
			for i < limit && content[i] != '\n' {
				i++
			}
		case c == '"':
			if depth == 0 && i > start && prev != '=' {
				return end
			}
			i = scanString(content, i, limit)
			end = i
			prev = '"'
		case c == '(' || c == '[' || c == '{':
			depth++
			i++
			end = i
			prev = c
		case c == ')' || c == ']' || c == '}':
			if depth == 0 {
				return end
			}
			depth--
			i++
			end = i
			prev = c
		default:
			i++
			end = i
			prev = c
		}
	}
	return end
}

// scanString consumes a string or block string starting at the opening quote
// and returns the exclusive end offset. Unterminated strings run to limit;
// the parser has already rejected those.
func scanString(content []byte, start, limit int) int {
	if limit > len(content) {
		limit = len(content)
	}
	if start+2 < limit && content[start+1] == '"' && content[start+2] == '"' {
		i := start + 3
		for i+2 < limit {
			if content[i] == '\\' && i+3 < limit && content[i+1] == '"' && content[i+2] == '"' && content[i+3] == '"' {
				i += 4
				continue
			}
			if content[i] == '"' && content[i+1] == '"' && content[i+2] == '"' {
				return i + 3
			}
			i++
		}
		return limit
	}
	i := start + 1
	for i < limit {
		switch content[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		case '\n':
			return i
		default:
			i++
		}
	}
	return limit
}

// scanBalanced consumes one bracketed group opening at start and returns the
// exclusive end offset past the matching closer.
func scanBalanced(content []byte, start, limit int) int {
	if limit > len(content) {
		limit = len(content)
	}
	depth := 0
	i := start
	for i < limit {
		switch content[i] {
		case '#':
			for i < limit && content[i] != '\n' {
				i++
			}
		case '"':
			i = scanString(content, i, limit)
		case '(', '[', '{':
			depth++
			i++
		case ')', ']', '}':
			depth--
			i++
			if depth <= 0 {
				return i
			}
		default:
			i++
		}
	}
	return limit
}

// scanDirectiveEnd measures a directive application beginning at start
// (at the "@" or directly at the name). It returns the end of the name and
// the end of the whole application including an argument list, if present.
func scanDirectiveEnd(content []byte, start, limit int) (nameEnd, end int) {
	if limit > len(content) {
		limit = len(content)
	}
	i := start
	if i < limit && content[i] == '@' {
		i++
	}
	for i < limit && isIdentByte(content[i]) {
		i++
	}
	nameEnd = i
	// Comments are ignored tokens, so one may sit between the name and the
	// argument list.
	j := i
	for j < limit {
		c := content[j]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			j++
			continue
		}
		if c == '#' {
			for j < limit && content[j] != '\n' {
				j++
			}
			continue
		}
		break
	}
	if j < limit && content[j] == '(' {
		return nameEnd, scanBalanced(content, j, limit)
	}
	return nameEnd, nameEnd
}

// scanOpen returns the offset of the first depth-zero occurrence of open,
// or -1. Strings and comments are skipped.
func scanOpen(content []byte, start, limit int, open byte) int {
	if limit > len(content) {
		limit = len(content)
	}
	depth := 0
	i := start
	for i < limit {
		c := content[i]
		switch {
		case c == '#':
			for i < limit && content[i] != '\n' {
				i++
			}
		case c == '"':
			i = scanString(content, i, limit)
		case c == open && depth == 0:
			return i
		case c == '(' || c == '[' || c == '{':
			depth++
			i++
		case c == ')' || c == ']' || c == '}':
			depth--
			i++
		default:
			i++
		}
	}
	return -1
}

// scanDescStart reports where a member's description begins: if the only
// token between from and memberStart is a string literal, the member's
// textual definition starts at that string. Otherwise it starts at
// memberStart.
func scanDescStart(content []byte, from, memberStart int) int {
	if memberStart > len(content) {
		memberStart = len(content)
	}
	i := from
	for i < memberStart {
		c := content[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case c == '#':
			for i < memberStart && content[i] != '\n' {
				i++
			}
		case c == '"':
			strStart := i
			i = scanString(content, i, memberStart)
			for i < memberStart {
				t := content[i]
				if t == ' ' || t == '\t' || t == '\n' || t == '\r' || t == ',' {
					i++
					continue
				}
				if t == '#' {
					for i < memberStart && content[i] != '\n' {
						i++
					}
					continue
				}
				return memberStart
			}
			return strStart
		default:
			return memberStart
		}
	}
	return memberStart
}

// identSpan locates the first identifier token equal to name within
// [start, limit) and returns its half-open offsets. Strings and comments
// are skipped. A missing name yields an empty span at start.
func identSpan(content []byte, start, limit int, name string) (int, int) {
	if limit > len(content) {
		limit = len(content)
	}
	i := start
	for i < limit {
		c := content[i]
		switch {
		case c == '#':
			for i < limit && content[i] != '\n' {
				i++
			}
		case c == '"':
			i = scanString(content, i, limit)
		case isIdentStart(c):
			j := i
			for j < limit && isIdentByte(content[j]) {
				j++
			}
			if string(content[i:j]) == name {
				return i, j
			}
			i = j
		default:
			i++
		}
	}
	return start, start
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
