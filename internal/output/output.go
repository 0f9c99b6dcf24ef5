package output

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mattn/go-isatty"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/review"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Formats lists the supported format names.
var Formats = []string{"text", "json", "markdown", "sarif", "github"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	case "github":
		return &GitHubWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
// Text written to an interactive terminal is coloured unless NO_COLOR is set.
func WriteReport(report *review.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
		if tw, ok := writer.(*TextWriter); ok {
			tw.Color = os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(os.Stdout.Fd())
		}
	}

	return writer.Write(w, report)
}

// sortedIssues returns the real findings of one file ordered by line then
// position. Line-level findings sort before column findings on the same
// line.
func sortedIssues(fs []finding.Finding) []finding.Finding {
	out := make([]finding.Finding, 0, len(fs))
	for _, f := range fs {
		if !f.IsSentinel() {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b finding.Finding) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Position, b.Position))
	})
	return out
}

func total(s finding.Summary) int {
	return s.Counts.Major + s.Counts.Minor + s.Counts.Info
}
