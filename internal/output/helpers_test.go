package output

import (
	"errors"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/review"
)

func sampleReport() *review.Report {
	a := []finding.Finding{
		{FilePath: "src/A.java", Line: 7, Position: finding.NoColumn, RuleID: "LLM_METHOD_NAME_INTENT",
			Message: "getData() writes to the database", Severity: finding.SeverityMinor, Source: finding.SourceLLM},
		{FilePath: "src/A.java", Line: 3, Position: 4, RuleID: "CLASS_NAMING",
			Message: "Class name 'my_class' should be PascalCase", Severity: finding.SeverityMajor, Source: finding.SourceStatic},
		{FilePath: "src/A.java", Line: 12, Position: 30, RuleID: "MAGIC_NUMBER",
			Message: "Magic number 42, use a named constant", Severity: finding.SeverityInfo, Source: finding.SourceStatic},
	}
	b := []finding.Finding{finding.NoIssues("src/B.java")}
	all := append(append([]finding.Finding{}, a...), b...)

	return &review.Report{
		Tool:    review.Tool,
		Version: "1.0",
		RunID:   "run-1",
		Inputs:  review.InputInfo{Mode: "files"},
		Summary: finding.Summarize(all),
		Files: []review.FileResult{
			{Path: "src/A.java", Findings: a},
			{Path: "src/B.java", Findings: b},
		},
		Timing: review.Timing{StaticMs: 3, SemanticMs: 40, TotalMs: 45},
	}
}

func cleanReport() *review.Report {
	fs := []finding.Finding{finding.NoIssues("src/B.java")}
	return &review.Report{
		Tool:    review.Tool,
		Version: "1.0",
		Inputs:  review.InputInfo{Mode: "staged"},
		Summary: finding.Summarize(fs),
		Files:   []review.FileResult{{Path: "src/B.java", Findings: fs}},
		Warnings: []review.Warning{
			{Stage: review.StageRules, Err: errors.New("rules.yaml: no such file")},
		},
	}
}
