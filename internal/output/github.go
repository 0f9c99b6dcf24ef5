package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/review"
)

// GitHubWriter emits GitHub Actions workflow commands so findings show up
// as annotations on the pull request diff.
type GitHubWriter struct{}

func (g *GitHubWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	for _, file := range report.Files {
		for _, f := range sortedIssues(file.Findings) {
			ew.printf("%s\n", annotation(f))
		}
	}
	for _, wr := range report.Warnings {
		ew.printf("::warning title=refract::%s\n", escapeData(wr.Error()))
	}
	return ew.err
}

// annotationLevel maps a severity to a workflow command.
func annotationLevel(s finding.Severity) string {
	switch s {
	case finding.SeverityMajor:
		return "error"
	case finding.SeverityMinor:
		return "warning"
	default:
		return "notice"
	}
}

func annotation(f finding.Finding) string {
	props := []string{"file=" + escapeProperty(f.FilePath)}
	if f.Line > 0 {
		props = append(props, "line="+strconv.Itoa(f.Line))
		if f.HasColumn() {
			props = append(props, "col="+strconv.Itoa(f.Position+1))
		}
	}
	props = append(props, "title="+escapeProperty(f.RuleID))
	return "::" + annotationLevel(f.Severity) + " " + strings.Join(props, ",") + "::" + escapeData(f.Message)
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }
