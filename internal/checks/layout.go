package checks

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/source"
)

// LineLength returns a checker flagging lines longer than limit characters.
// The finding is reported at the byte offset of character limit+1, or at
// the end of a line exactly limit+1 characters long.
func LineLength(limit int) Checker {
	return func(path, text string, rule rules.Rule) []finding.Finding {
		var out []finding.Finding
		for i, line := range source.Lines(text) {
			if utf8.RuneCountInString(line) > limit {
				out = append(out, newFinding(path, i+1, runeOffset(line, limit+1), rule, rule.Message))
			}
		}
		return out
	}
}

// runeOffset returns the byte offset of the n-th (0-based) rune in line.
func runeOffset(line string, n int) int {
	count := 0
	for off := range line {
		if count == n {
			return off
		}
		count++
	}
	return len(line)
}

// Indentation requires each non-blank line to start with four spaces per
// open block. A line starting with } closes one level before it is
// checked; a line ending with { opens one after.
func Indentation(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	level := 0
	for i, line := range source.Lines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "}") && level > 0 {
			level--
		}
		want := level * 4
		spaces, first := source.Indent(line)
		if spaces != want || first != want {
			out = append(out, newFinding(path, i+1, first, rule, rule.Message))
		}
		if strings.HasSuffix(trimmed, "{") {
			level++
		}
	}
	return out
}

// TabCharacter flags the first tab on each line.
func TabCharacter(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		if pos := strings.IndexByte(line, '\t'); pos >= 0 {
			out = append(out, newFinding(path, i+1, pos, rule, rule.Message))
		}
	}
	return out
}

// FinalNewline flags a non-empty file whose last byte is not a newline.
func FinalNewline(path, text string, rule rules.Rule) []finding.Finding {
	if text == "" || strings.HasSuffix(text, "\n") {
		return nil
	}
	lines := source.Lines(text)
	last := lines[len(lines)-1]
	return []finding.Finding{newFinding(path, len(lines), len(last), rule, rule.Message)}
}
