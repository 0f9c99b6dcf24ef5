package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct {
	// Color enables ANSI styling of severities and file headers.
	Color bool
}

var (
	majorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	minorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	fileStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (t *TextWriter) render(s lipgloss.Style, text string) string {
	if !t.Color {
		return text
	}
	return s.Render(text)
}

func (t *TextWriter) severity(s finding.Severity) string {
	label := fmt.Sprintf("%-5s", s)
	switch s {
	case finding.SeverityMajor:
		return t.render(majorStyle, label)
	case finding.SeverityMinor:
		return t.render(minorStyle, label)
	default:
		return t.render(infoStyle, label)
	}
}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}

	n := total(report.Summary)
	ew.printf("refract review — %s mode\n", report.Inputs.Mode)
	if report.Inputs.Base != "" {
		ew.printf("Base: %s\n", report.Inputs.Base)
	}
	if report.Repo.Root != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files: %d | Findings: %d total", len(report.Files), n)
	if n > 0 {
		ew.printf(" (%d major, %d minor, %d info)",
			report.Summary.Counts.Major,
			report.Summary.Counts.Minor,
			report.Summary.Counts.Info,
		)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	for _, file := range report.Files {
		issues := sortedIssues(file.Findings)
		if len(issues) == 0 {
			continue
		}
		ew.printf("\n%s\n", t.render(fileStyle, file.Path))
		for _, f := range issues {
			ew.printf("  %-8s %s  %-32s %s %s\n",
				location(f), t.severity(f.Severity), f.RuleID, f.Message,
				t.render(dimStyle, "["+string(f.Source)+"]"))
		}
	}

	if n == 0 {
		ew.printf("\n%s\n", t.render(okStyle, "No violations found."))
	}

	if len(report.Warnings) > 0 {
		ew.printf("\nWarnings:\n")
		for _, wr := range report.Warnings {
			ew.printf("  %s\n", wr.Error())
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (static: %dms, semantic: %dms)\n",
		report.Timing.TotalMs, report.Timing.StaticMs, report.Timing.SemanticMs)

	return ew.err
}

// location renders "line:col" with a 1-based column, or just the line for
// line-level findings.
func location(f finding.Finding) string {
	if !f.HasColumn() {
		return fmt.Sprintf("%d", f.Line)
	}
	return fmt.Sprintf("%d:%d", f.Line, f.Position+1)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
