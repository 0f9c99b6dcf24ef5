package output

import (
	"io"
	"strings"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	n := total(report.Summary)

	ew.printf("## refract style review\n\n")

	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	ew.printf("| Major    | %d    |\n", report.Summary.Counts.Major)
	ew.printf("| Minor    | %d    |\n", report.Summary.Counts.Minor)
	ew.printf("| Info     | %d    |\n", report.Summary.Counts.Info)
	ew.printf("| **Total** | **%d** |\n\n", n)

	if n == 0 {
		ew.println("No violations found. :white_check_mark:")
	}

	for _, file := range report.Files {
		issues := sortedIssues(file.Findings)
		if len(issues) == 0 {
			continue
		}
		ew.printf("<details>\n<summary><code>%s</code> (%d)</summary>\n\n", file.Path, len(issues))
		ew.printf("| Line | Severity | Rule | Message |\n")
		ew.printf("|------|----------|------|---------|\n")
		for _, f := range issues {
			ew.printf("| %s | %s %s | `%s` | %s |\n",
				location(f), mdSeverityIcon(f.Severity), f.Severity, f.RuleID, mdEscape(f.Message))
		}
		ew.printf("\n</details>\n\n")
	}

	if len(report.Warnings) > 0 {
		ew.printf("> [!WARNING]\n")
		for _, wr := range report.Warnings {
			ew.printf("> %s\n", mdEscape(wr.Error()))
		}
		ew.printf("\n")
	}

	ew.printf("*Reviewed in %dms (static: %dms, semantic: %dms)*\n",
		report.Timing.TotalMs, report.Timing.StaticMs, report.Timing.SemanticMs)

	return ew.err
}

func mdSeverityIcon(s finding.Severity) string {
	switch s {
	case finding.SeverityMajor:
		return ":red_circle:"
	case finding.SeverityMinor:
		return ":orange_circle:"
	case finding.SeverityInfo:
		return ":large_blue_circle:"
	default:
		return ":white_circle:"
	}
}

// mdEscape keeps a message on one table row.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
