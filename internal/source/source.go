package source

import "strings"

// Lines splits text into lines. A trailing newline does not produce an
// extra empty line, and carriage returns before a newline are dropped.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// SkipLiteral returns the index just past the string or char literal that
// opens at line[start]. An unterminated literal runs to end of line and
// reports closed == false.
func SkipLiteral(line string, start int) (end int, closed bool) {
	quote := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			return i + 1, true
		}
	}
	return len(line), false
}

// MaskLiterals blanks the contents of string and char literals, keeping
// the quotes and the line length intact so offsets still line up.
func MaskLiterals(line string) string {
	if !strings.ContainsAny(line, `"'`) {
		return line
	}
	b := []byte(line)
	for i := 0; i < len(b); i++ {
		if b[i] != '"' && b[i] != '\'' {
			continue
		}
		end, closed := SkipLiteral(line, i)
		inner := end
		if closed {
			inner = end - 1
		}
		for j := i + 1; j < inner; j++ {
			b[j] = ' '
		}
		i = end - 1
	}
	return string(b)
}

// Indent returns the number of leading spaces and the offset of the first
// non-whitespace byte. A blank line yields offset len(line).
func Indent(line string) (spaces, first int) {
	for first < len(line) {
		switch line[first] {
		case ' ':
			spaces++
		case '\t':
		default:
			return spaces, first
		}
		first++
	}
	return spaces, first
}
