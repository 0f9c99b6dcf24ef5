package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/review"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format. Sentinels are not
// results.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *review.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations,omitempty"`
	Properties sarifProperties `json:"properties"`
}

type sarifProperties struct {
	Source string `json:"source"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func buildSARIF(report *review.Report) sarifLog {
	results := []sarifResult{}
	var rules []sarifRule
	seen := make(map[string]bool)

	for _, file := range report.Files {
		for _, f := range sortedIssues(file.Findings) {
			if !seen[f.RuleID] {
				seen[f.RuleID] = true
				rules = append(rules, sarifRule{
					ID:               f.RuleID,
					ShortDescription: sarifMessage{Text: f.RuleID},
					DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(f.Severity)},
				})
			}

			loc := sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: f.FilePath}}
			if f.Line > 0 {
				loc.Region = &sarifRegion{StartLine: f.Line}
				if f.HasColumn() {
					loc.Region.StartColumn = f.Position + 1
				}
			}
			results = append(results, sarifResult{
				RuleID:     f.RuleID,
				Level:      severityToLevel(f.Severity),
				Message:    sarifMessage{Text: f.Message},
				Locations:  []sarifLocation{{PhysicalLocation: loc}},
				Properties: sarifProperties{Source: string(f.Source)},
			})
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           review.Tool,
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/refract",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// severityToLevel maps a finding severity to a SARIF level.
func severityToLevel(s finding.Severity) string {
	switch s {
	case finding.SeverityMajor:
		return "error"
	case finding.SeverityMinor:
		return "warning"
	default:
		return "note"
	}
}
