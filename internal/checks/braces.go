package checks

import (
	"regexp"
	"strings"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/source"
)

var (
	// typeHeaderRe matches a type declaration line that stops short of its
	// opening brace.
	typeHeaderRe = regexp.MustCompile(`(?:^|[^.\w])(?:class|interface|enum|record)\s+[A-Za-z_$][\w$]*`)
	throwsRe     = regexp.MustCompile(`\)\s*throws\s+[\w$.]+(?:\s*,\s*[\w$.]+)*$`)

	braceKeywords = []string{"else", "try", "finally", "do"}
)

// BracePlacement flags an opening brace that sits alone on the line after
// the statement or declaration it belongs to.
func BracePlacement(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	lines := source.Lines(text)
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "{" {
			continue
		}
		if opensBlock(strings.TrimSpace(source.MaskLiterals(lines[i-1]))) {
			pos := strings.IndexByte(lines[i], '{')
			out = append(out, newFinding(path, i+1, pos, rule, rule.Message))
		}
	}
	return out
}

func opensBlock(prev string) bool {
	if prev == "" || strings.HasSuffix(prev, ";") || strings.HasSuffix(prev, "{") || strings.HasSuffix(prev, "}") {
		return false
	}
	if strings.HasSuffix(prev, ")") || throwsRe.MatchString(prev) {
		return true
	}
	for _, kw := range braceKeywords {
		if prev == kw || strings.HasSuffix(prev, " "+kw) || strings.HasSuffix(prev, "}"+kw) {
			return true
		}
	}
	return typeHeaderRe.MatchString(prev)
}

// ElsePlacement flags an else that starts the line after a lone closing
// brace instead of sharing that brace's line.
func ElsePlacement(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	lines := source.Lines(text)
	for i := 0; i+1 < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "}" {
			continue
		}
		next := strings.TrimSpace(lines[i+1])
		if next == "else" || strings.HasPrefix(next, "else ") || strings.HasPrefix(next, "else{") {
			_, pos := source.Indent(lines[i+1])
			out = append(out, newFinding(path, i+2, pos, rule, rule.Message))
		}
	}
	return out
}

// EmptyBlock flags a line ending in { that is immediately closed by a line
// holding only }.
func EmptyBlock(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	lines := source.Lines(text)
	for i := 0; i+1 < len(lines); i++ {
		if !strings.HasSuffix(strings.TrimSpace(lines[i]), "{") || strings.TrimSpace(lines[i+1]) != "}" {
			continue
		}
		pos := strings.LastIndexByte(lines[i], '{')
		out = append(out, newFinding(path, i+1, pos, rule, rule.Message))
	}
	return out
}
