package checks

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/source"
)

var (
	modifierOrderRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:static|final)\s+(?:public|protected|private)\b`),
		regexp.MustCompile(`\bstatic\s+abstract\b`),
		regexp.MustCompile(`\bfinal\s+static\b`),
	}

	multiDeclRe = regexp.MustCompile(`^(?:(?:public|protected|private|static|final|transient|volatile)\s+)*` +
		`(?:int|long|short|byte|char|float|double|boolean|String)(?:\[\])*\s+[A-Za-z_$]`)

	numberRe         = regexp.MustCompile(`\d[\w.]*`)
	integerLiteralRe = regexp.MustCompile(`^\d+[lL]?$`)
	constantLineRe   = regexp.MustCompile(`\b(?:static\s+final|final\s+static)\b`)
)

// ModifierOrder flags the leftmost out-of-order modifier pair on a line.
func ModifierOrder(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		masked := source.MaskLiterals(line)
		pos := -1
		for _, re := range modifierOrderRes {
			if loc := re.FindStringIndex(masked); loc != nil && (pos < 0 || loc[0] < pos) {
				pos = loc[0]
			}
		}
		if pos >= 0 {
			out = append(out, newFinding(path, i+1, pos, rule, rule.Message))
		}
	}
	return out
}

// MultipleDeclarations flags a primitive or String declaration that
// declares more than one variable in the same statement.
func MultipleDeclarations(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		masked := source.MaskLiterals(line)
		_, first := source.Indent(masked)
		stmt := masked[first:]
		if !multiDeclRe.MatchString(stmt) {
			continue
		}
		if end := strings.IndexByte(stmt, ';'); end >= 0 {
			stmt = stmt[:end]
		}
		if strings.Contains(stmt, ",") && !strings.ContainsAny(stmt, "({") {
			out = append(out, newFinding(path, i+1, first, rule, rule.Message))
		}
	}
	return out
}

// MagicNumber flags integer literals other than 0 and 1. Lines declaring
// static final constants are exempt, as are import and package lines.
func MagicNumber(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		masked := source.MaskLiterals(line)
		trimmed := strings.TrimSpace(masked)
		if isImportOrPackage(trimmed) || constantLineRe.MatchString(masked) {
			continue
		}
		for _, loc := range numberRe.FindAllStringIndex(masked, -1) {
			if loc[0] > 0 && (isWordByte(masked[loc[0]-1]) || masked[loc[0]-1] == '.') {
				continue
			}
			lit := masked[loc[0]:loc[1]]
			if !integerLiteralRe.MatchString(lit) {
				continue
			}
			value := strings.TrimRight(lit, "lL")
			if value == "0" || value == "1" {
				continue
			}
			out = append(out, newFinding(path, i+1, loc[0], rule, rule.Render(map[string]string{"value": value})))
		}
	}
	return out
}

// ImportOrder reports once, at the first import, when the import lines are
// not in lexicographic order.
func ImportOrder(path, text string, rule rules.Rule) []finding.Finding {
	var imports []string
	firstLine, firstPos := 0, 0
	for i, line := range source.Lines(text) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "import ") {
			continue
		}
		if imports == nil {
			firstLine = i + 1
			firstPos = strings.Index(line, "import")
		}
		imports = append(imports, trimmed)
	}
	if slices.IsSorted(imports) {
		return nil
	}
	return []finding.Finding{newFinding(path, firstLine, firstPos, rule, rule.Message)}
}
