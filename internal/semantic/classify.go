package semantic

import (
	"strings"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
)

// Rule ids produced by the semantic stage.
const (
	RuleBooleanSemantics           = "LLM_BOOLEAN_SEMANTICS"
	RuleMethodSingleResponsibility = "LLM_METHOD_SINGLE_RESPONSIBILITY"
	RuleMethodNameIntent           = "LLM_METHOD_NAME_INTENT"
)

type category struct {
	ruleID   string
	keywords []string
}

// categories are tried in order; the first keyword hit wins.
var categories = []category{
	{RuleBooleanSemantics, []string{"boolean", "flag", "variable name", "unclear", "descriptive"}},
	{RuleMethodSingleResponsibility, []string{"more than one", "do too much", "single responsibility", "multiple"}},
}

// Classify maps a free-text issue to a semantic rule id.
func Classify(message string) string {
	lower := strings.ToLower(message)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.ruleID
			}
		}
	}
	return RuleMethodNameIntent
}

// Findings converts a model response into findings. Entries pointing
// outside the file, and entries whose rule id is not in idx, are dropped.
func Findings(path, response string, lineCount int, idx rules.Index) []finding.Finding {
	var out []finding.Finding
	for _, item := range ParseResponse(response) {
		if item.Line < 1 || item.Line > lineCount {
			continue
		}
		id := Classify(item.Message)
		rule, ok := idx[id]
		if !ok {
			continue
		}
		out = append(out, finding.Finding{
			FilePath: path,
			Line:     item.Line,
			Position: finding.NoColumn,
			RuleID:   id,
			Message:  item.Message,
			Severity: rule.Severity,
			Source:   finding.SourceLLM,
		})
	}
	return out
}
