package comments

import (
	"strings"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/source"
)

// Span is a half-open byte range [Start, End) of comment text on one line.
// A span that runs to the end of its line also covers offsets at or past
// End, so a finding reported just beyond the last character is still inside.
type Span struct {
	Start int  `json:"start"`
	End   int  `json:"end"`
	ToEOL bool `json:"toEol"`
}

// Contains reports whether offset p lies inside the span.
func (s Span) Contains(p int) bool {
	if p < s.Start {
		return false
	}
	return p < s.End || s.ToEOL
}

// Map holds the comment spans of a file keyed by 1-based line number.
type Map map[int][]Span

// Contains reports whether offset pos on line is inside a comment.
func (m Map) Contains(line, pos int) bool {
	for _, s := range m[line] {
		if s.Contains(pos) {
			return true
		}
	}
	return false
}

// Scan walks text once and records every comment span. The only state
// carried between lines is whether a block comment is still open.
func Scan(text string) Map {
	m := make(Map)
	inBlock := false
	for n, line := range source.Lines(text) {
		var spans []Span
		spans, inBlock = scanLine(line, inBlock)
		if len(spans) > 0 {
			m[n+1] = spans
		}
	}
	return m
}

func scanLine(line string, inBlock bool) ([]Span, bool) {
	var spans []Span
	i := 0
	if inBlock {
		end := strings.Index(line, "*/")
		if end < 0 {
			return []Span{{Start: 0, End: len(line), ToEOL: true}}, true
		}
		spans = append(spans, Span{Start: 0, End: end + 2})
		i = end + 2
	}

	for i < len(line) {
		switch {
		case line[i] == '"' || line[i] == '\'':
			i, _ = source.SkipLiteral(line, i)
		case strings.HasPrefix(line[i:], "//"):
			return append(spans, Span{Start: i, End: len(line), ToEOL: true}), false
		case strings.HasPrefix(line[i:], "/*"):
			end := strings.Index(line[i+2:], "*/")
			if end < 0 {
				return append(spans, Span{Start: i, End: len(line), ToEOL: true}), true
			}
			closeAt := i + 2 + end + 2
			spans = append(spans, Span{Start: i, End: closeAt})
			i = closeAt
		default:
			i++
		}
	}
	return spans, false
}

// Filter drops findings whose position falls inside a comment span.
// Findings without a column are always kept.
func Filter(findings []finding.Finding, m Map) []finding.Finding {
	if len(m) == 0 {
		return findings
	}
	kept := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		if f.HasColumn() && m.Contains(f.Line, f.Position) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
