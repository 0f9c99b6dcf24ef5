package finding

import "fmt"

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

// Rank returns a numeric rank for sorting (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// ParseSeverity converts a string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q (want info, minor or major)", s)
	}
	return sev, nil
}

// MeetsThreshold returns true if severity is at or above the threshold.
// A threshold of "none" or "" never matches.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return s.Rank() >= Severity(threshold).Rank()
}

// Source records which stage produced a finding.
type Source string

const (
	SourceStatic Source = "static"
	SourceLLM    Source = "llm"
)

// NoColumn marks a finding that applies to a whole line.
const NoColumn = -1

// NoIssuesID is the rule id of the clean-review sentinel.
const NoIssuesID = "NO_ISSUES"

// Finding is one reported style or semantic issue.
type Finding struct {
	FilePath string   `json:"filePath"`
	Line     int      `json:"line"`
	Position int      `json:"position"`
	RuleID   string   `json:"ruleId"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Source   Source   `json:"source"`
}

// HasColumn reports whether the finding points at a concrete offset.
func (f Finding) HasColumn() bool { return f.Position != NoColumn }

// IsSentinel reports whether f is the clean-review marker rather than a
// real violation.
func (f Finding) IsSentinel() bool { return f.RuleID == NoIssuesID }

// NoIssues returns the sentinel appended when a file has no findings.
func NoIssues(path string) Finding {
	return Finding{
		FilePath: path,
		Line:     0,
		Position: NoColumn,
		RuleID:   NoIssuesID,
		Message:  "No violations found.",
		Severity: SeverityInfo,
		Source:   SourceStatic,
	}
}

// Counts holds counts by severity level.
type Counts struct {
	Info  int `json:"info"`
	Minor int `json:"minor"`
	Major int `json:"major"`
}

// Summary provides an overview of findings.
type Summary struct {
	Counts          Counts   `json:"counts"`
	HighestSeverity Severity `json:"highestSeverity"`
}

// Summarize counts findings by severity. Sentinels are not counted.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		if f.IsSentinel() {
			continue
		}
		switch f.Severity {
		case SeverityInfo:
			s.Counts.Info++
		case SeverityMinor:
			s.Counts.Minor++
		case SeverityMajor:
			s.Counts.Major++
		}
		if f.Severity.Rank() > s.HighestSeverity.Rank() {
			s.HighestSeverity = f.Severity
		}
	}
	return s
}

// AnyMeets reports whether a real finding is at or above threshold.
func AnyMeets(findings []Finding, threshold string) bool {
	for _, f := range findings {
		if !f.IsSentinel() && MeetsThreshold(f.Severity, threshold) {
			return true
		}
	}
	return false
}
