package checks

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/source"
)

var (
	twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^="}
	oneCharOps = "=<>+-*/%"

	// signContext holds the characters after which + or - is a sign.
	signContext  = "=(,;:?[{!&|<>+-*/%^~"
	signKeywords = map[string]bool{"return": true, "case": true, "throw": true, "yield": true}

	ifNoSpaceRe = regexp.MustCompile(`\bif\(`)
)

// OperatorSpacing flags binary operators that are not surrounded by exactly
// one space. Only the first violation on a line is reported.
func OperatorSpacing(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		if pos, ok := operatorSpacingViolation(line); ok {
			out = append(out, newFinding(path, i+1, pos, rule, rule.Message))
		}
	}
	return out
}

func operatorSpacingViolation(raw string) (int, bool) {
	line := source.MaskLiterals(raw)
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isImportOrPackage(trimmed) || strings.HasPrefix(trimmed, "*") {
		return 0, false
	}
	first := len(line) - len(strings.TrimLeft(line, " \t"))
	end := len(strings.TrimRight(line, " \t"))

	depth := 0
	for i := first; i < end; {
		c := line[i]
		switch {
		case strings.HasPrefix(line[i:], "//"):
			return 0, false
		case strings.HasPrefix(line[i:], "/*"):
			closeAt := strings.Index(line[i+2:], "*/")
			if closeAt < 0 {
				return 0, false
			}
			i += closeAt + 4
			continue
		case c == '"' || c == '\'':
			i, _ = source.SkipLiteral(line, i)
			continue
		}

		op := matchOperator(line[i:])
		if op == "" {
			i++
			continue
		}

		switch op {
		case "+", "-":
			// ++, -- and ->
			if i+1 < len(line) && (line[i+1] == c || (c == '-' && line[i+1] == '>')) {
				i += 2
				continue
			}
			if isSign(line, i, first) {
				i++
				continue
			}
		case "<":
			if isGenericBracket(line, i) {
				depth++
				i++
				continue
			}
		case ">":
			if depth > 0 || isGenericBracket(line, i) {
				if depth > 0 {
					depth--
				}
				i++
				continue
			}
		}

		if !spacedBefore(line, i, first) || !spacedAfter(line, i+len(op), end) {
			return i, true
		}
		i += len(op)
	}
	return 0, false
}

func matchOperator(s string) string {
	for _, op := range twoCharOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	if s != "" && strings.IndexByte(oneCharOps, s[0]) >= 0 {
		return s[:1]
	}
	return ""
}

// isSign reports whether the + or - at i is a unary sign or part of a
// floating point exponent rather than a binary operator.
func isSign(line string, i, first int) bool {
	if i == first {
		return true
	}
	j := i - 1
	for j >= 0 && (line[j] == ' ' || line[j] == '\t') {
		j--
	}
	if j < 0 {
		return true
	}
	p := line[j]
	if strings.IndexByte(signContext, p) >= 0 {
		return true
	}
	if (p == 'e' || p == 'E') && j == i-1 && j > 0 && isDigit(line[j-1]) {
		return true
	}
	if p == ')' && closesCast(line, j) {
		return true
	}
	return signKeywords[wordEndingAt(line, j)]
}

// castType matches the contents of a cast: a primitive or a type name with
// a lowercase letter, so (MAX) - 1 stays a subtraction.
var castType = regexp.MustCompile(`^(?:byte|short|int|long|float|double|char|boolean|[A-Z][\w.]*[a-z][\w.]*(?:<[\w.<>?, ]*>)?)(?:\[\])*$`)

// closesCast reports whether the ) at j ends a cast such as (int).
func closesCast(line string, j int) bool {
	open := strings.LastIndexByte(line[:j], '(')
	if open < 0 {
		return false
	}
	return castType.MatchString(strings.TrimSpace(line[open+1 : j]))
}

// isGenericBracket reports whether the angle bracket at i looks like type
// parameter syntax: a neighbour is uppercase, a wildcard or another bracket.
func isGenericBracket(line string, i int) bool {
	if i > 0 && isGenericNeighbour(line[i-1]) {
		return true
	}
	return i+1 < len(line) && isGenericNeighbour(line[i+1])
}

func isGenericNeighbour(b byte) bool {
	return unicode.IsUpper(rune(b)) || b == '<' || b == '>' || b == '?'
}

func spacedBefore(line string, i, first int) bool {
	if i == first {
		return true
	}
	return line[i-1] == ' ' && line[i-2] != ' ' && line[i-2] != '\t'
}

func spacedAfter(line string, j, end int) bool {
	if j >= end {
		return true
	}
	return line[j] == ' ' && (j+1 >= end || line[j+1] != ' ')
}

// IfSpacing flags every "if(" that is missing the space before the
// parenthesis.
func IfSpacing(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		for _, loc := range ifNoSpaceRe.FindAllStringIndex(source.MaskLiterals(line), -1) {
			out = append(out, newFinding(path, i+1, loc[0], rule, rule.Message))
		}
	}
	return out
}

func isImportOrPackage(trimmed string) bool {
	return strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "package ")
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || isDigit(b) || (b|0x20 >= 'a' && b|0x20 <= 'z')
}

// wordEndingAt returns the identifier whose last byte is at line[j].
func wordEndingAt(line string, j int) string {
	start := j
	for start >= 0 && isWordByte(line[start]) {
		start--
	}
	return line[start+1 : j+1]
}
