package checks

import (
	"sort"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
)

// DefaultMaxLineLength is the line length threshold when none is configured.
const DefaultMaxLineLength = 120

// Checker scans a file and reports violations of one rule. Findings are
// ordered by line, then by position within the line.
type Checker func(path, text string, rule rules.Rule) []finding.Finding

// Options tunes the configurable checkers.
type Options struct {
	MaxLineLength int
}

// Registry maps rule ids to checkers.
type Registry map[string]Checker

// Default returns the registry of every built-in checker.
func Default(opts Options) Registry {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}
	return Registry{
		"LINE_LENGTH":           LineLength(opts.MaxLineLength),
		"OPERATOR_SPACING":      OperatorSpacing,
		"IF_SPACING":            IfSpacing,
		"INDENTATION":           Indentation,
		"BRACE_PLACEMENT":       BracePlacement,
		"ELSE_PLACEMENT":        ElsePlacement,
		"EMPTY_BLOCK":           EmptyBlock,
		"CLASS_NAMING":          ClassNaming,
		"METHOD_NAMING":         MethodNaming,
		"BOOLEAN_NAMING":        BooleanNaming,
		"CONSTANT_NAMING":       ConstantNaming,
		"MODIFIER_ORDER":        ModifierOrder,
		"MULTIPLE_DECLARATIONS": MultipleDeclarations,
		"MAGIC_NUMBER":          MagicNumber,
		"TAB_CHARACTER":         TabCharacter,
		"FINAL_NEWLINE":         FinalNewline,
		"IMPORT_ORDER":          ImportOrder,
	}
}

// IDs returns the registered rule ids in sorted order.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Run applies the checker registered for each rule in order. Rules with no
// registered checker are skipped.
func (r Registry) Run(path, text string, rs []rules.Rule) []finding.Finding {
	var out []finding.Finding
	for _, rule := range rs {
		check, ok := r[rule.ID]
		if !ok {
			continue
		}
		out = append(out, safeRun(check, path, text, rule)...)
	}
	return out
}

// safeRun turns a panicking checker into an empty result.
func safeRun(check Checker, path, text string, rule rules.Rule) (out []finding.Finding) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return check(path, text, rule)
}

func newFinding(path string, line, pos int, rule rules.Rule, msg string) finding.Finding {
	return finding.Finding{
		FilePath: path,
		Line:     line,
		Position: pos,
		RuleID:   rule.ID,
		Message:  msg,
		Severity: rule.Severity,
		Source:   finding.SourceStatic,
	}
}
