package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dshills/refract/internal/finding"
)

func TestSARIFWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, cleanReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", sarif.Version, "2.1.0")
	}
	if len(sarif.Runs) != 1 {
		t.Fatalf("Runs count = %d, want 1", len(sarif.Runs))
	}
	if len(sarif.Runs[0].Results) != 0 {
		t.Errorf("sentinel should not be a result, got %d results", len(sarif.Runs[0].Results))
	}
}

func TestSARIFWriter_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	run := sarif.Runs[0]
	if run.Tool.Driver.Name != "refract" {
		t.Errorf("Driver name = %q", run.Tool.Driver.Name)
	}
	if len(run.Tool.Driver.Rules) != 3 {
		t.Errorf("Rules = %d, want 3", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 3 {
		t.Fatalf("Results = %d, want 3", len(run.Results))
	}

	first := run.Results[0]
	if first.RuleID != "CLASS_NAMING" || first.Level != "error" {
		t.Errorf("first result = %+v", first)
	}
	region := first.Locations[0].PhysicalLocation.Region
	if region == nil || region.StartLine != 3 || region.StartColumn != 5 {
		t.Errorf("region = %+v", region)
	}

	llm := run.Results[1]
	if llm.Properties.Source != "llm" {
		t.Errorf("source = %q, want llm", llm.Properties.Source)
	}
	if llm.Locations[0].PhysicalLocation.Region.StartColumn != 0 {
		t.Error("line-level finding should have no column")
	}
}

func TestSeverityToLevel(t *testing.T) {
	tests := []struct {
		sev  finding.Severity
		want string
	}{
		{finding.SeverityMajor, "error"},
		{finding.SeverityMinor, "warning"},
		{finding.SeverityInfo, "note"},
		{finding.Severity("unknown"), "note"},
	}
	for _, tt := range tests {
		if got := severityToLevel(tt.sev); got != tt.want {
			t.Errorf("severityToLevel(%q) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
