package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextWriter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, cleanReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "staged mode") {
		t.Error("Output should mention mode")
	}
	if !strings.Contains(out, "Findings: 0 total") {
		t.Error("Output should show zero findings")
	}
	if !strings.Contains(out, "No violations found.") {
		t.Error("Output should say no violations found")
	}
	if !strings.Contains(out, "rules: rules.yaml: no such file") {
		t.Error("Output should list warnings")
	}
	if strings.Contains(out, "NO_ISSUES") {
		t.Error("Sentinel rule id should not be printed")
	}
}

func TestTextWriter_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Findings: 3 total (1 major, 1 minor, 1 info)") {
		t.Errorf("summary line missing:\n%s", out)
	}
	if !strings.Contains(out, "src/A.java") {
		t.Error("Output should contain the file path")
	}
	if strings.Contains(out, "src/B.java") {
		t.Error("Clean files should not get a section")
	}
	if !strings.Contains(out, "3:5") {
		t.Error("Column should be shown 1-based")
	}
	classIdx := strings.Index(out, "CLASS_NAMING")
	llmIdx := strings.Index(out, "LLM_METHOD_NAME_INTENT")
	if classIdx < 0 || llmIdx < 0 || classIdx > llmIdx {
		t.Error("findings should be ordered by line")
	}
	if !strings.Contains(out, "[llm]") || !strings.Contains(out, "[static]") {
		t.Error("Output should show finding sources")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Uncoloured writer should not emit ANSI escapes")
	}
	if !strings.Contains(out, "Completed in 45ms (static: 3ms, semantic: 40ms)") {
		t.Error("Output should contain timing")
	}
}
