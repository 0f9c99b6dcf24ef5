package checks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/source"
)

var (
	typeDeclRe = regexp.MustCompile(`(?:^|[^.\w$])(?:class|interface|enum|record)\s+([A-Za-z_$][\w$]*)`)

	methodDeclRe = regexp.MustCompile(`^\s*(?:(?:public|protected|private|static|final|abstract|synchronized|native|default|strictfp)\s+)*` +
		`(?:<[^()]*>\s+)?` +
		`([\w$.]+(?:<[^()=;]*>)?(?:\[\])*)\s+` +
		`([A-Za-z_$][\w$]*)\s*\(`)

	booleanDeclRe = regexp.MustCompile(`\b(?:boolean|Boolean)\s+([A-Za-z_$][\w$]*)\s*[=;,]`)

	constantDeclRe = regexp.MustCompile(`\b(?:static\s+final|final\s+static)\s+[\w$.]+(?:<[^=;]*>)?(?:\[\])*\s+([A-Za-z_$][\w$]*)\s*(?:[=;,]|$)`)

	// notReturnTypes are words the method pattern can mistake for a return
	// type: statements that look like "kw name(" and constructors whose
	// modifier lands in the type slot.
	notReturnTypes = map[string]bool{
		"return": true, "new": true, "throw": true, "else": true, "case": true,
		"yield": true, "assert": true, "package": true, "import": true,
		"public": true, "protected": true, "private": true, "static": true,
		"final": true, "abstract": true, "synchronized": true, "native": true,
		"default": true, "strictfp": true, "class": true, "interface": true,
		"enum": true, "record": true,
	}
	controlWords = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "catch": true,
		"synchronized": true, "return": true, "new": true, "try": true,
	}
)

// ClassNaming flags class, interface, enum and record names that do not
// start with an uppercase letter or that contain an underscore.
func ClassNaming(path, text string, rule rules.Rule) []finding.Finding {
	return eachDecl(path, text, rule, typeDeclRe, func(name string) bool {
		return startsUpper(name) && !strings.Contains(name, "_")
	})
}

// MethodNaming flags method declarations whose name does not start with a
// lowercase letter or that contain an underscore.
func MethodNaming(path, text string, rule rules.Rule) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		masked := source.MaskLiterals(line)
		m := methodDeclRe.FindStringSubmatchIndex(masked)
		if m == nil {
			continue
		}
		retType := masked[m[2]:m[3]]
		name := masked[m[4]:m[5]]
		if notReturnTypes[retType] || controlWords[name] {
			continue
		}
		if startsLower(name) && !strings.Contains(name, "_") {
			continue
		}
		out = append(out, newFinding(path, i+1, m[4], rule, rule.Render(map[string]string{"name": name})))
	}
	return out
}

// BooleanNaming flags boolean variables and fields whose name does not
// start with "is" or "has".
func BooleanNaming(path, text string, rule rules.Rule) []finding.Finding {
	return eachDecl(path, text, rule, booleanDeclRe, func(name string) bool {
		return strings.HasPrefix(name, "is") || strings.HasPrefix(name, "has")
	})
}

// ConstantNaming flags static final fields whose name is not all
// uppercase. serialVersionUID is exempt.
func ConstantNaming(path, text string, rule rules.Rule) []finding.Finding {
	return eachDecl(path, text, rule, constantDeclRe, func(name string) bool {
		return name == "serialVersionUID" || (name == strings.ToUpper(name) && strings.IndexFunc(name, unicode.IsLetter) >= 0)
	})
}

// eachDecl reports every identifier captured by re's first group that does
// not satisfy ok.
func eachDecl(path, text string, rule rules.Rule, re *regexp.Regexp, ok func(string) bool) []finding.Finding {
	var out []finding.Finding
	for i, line := range source.Lines(text) {
		masked := source.MaskLiterals(line)
		for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
			name := masked[m[2]:m[3]]
			if ok(name) {
				continue
			}
			out = append(out, newFinding(path, i+1, m[2], rule, rule.Render(map[string]string{"name": name})))
		}
	}
	return out
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
