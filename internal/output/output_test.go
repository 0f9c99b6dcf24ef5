package output

import (
	"testing"

	"github.com/dshills/refract/internal/finding"
)

func TestGetWriter(t *testing.T) {
	for _, f := range Formats {
		if _, err := GetWriter(f); err != nil {
			t.Errorf("GetWriter(%q) error: %v", f, err)
		}
	}
	if _, err := GetWriter("xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestSortedIssues(t *testing.T) {
	got := sortedIssues(sampleReport().Files[0].Findings)
	want := []int{3, 7, 12}
	if len(got) != len(want) {
		t.Fatalf("got %d findings, want %d", len(got), len(want))
	}
	for i, f := range got {
		if f.Line != want[i] {
			t.Errorf("finding[%d].Line = %d, want %d", i, f.Line, want[i])
		}
	}

	if n := len(sortedIssues([]finding.Finding{finding.NoIssues("x")})); n != 0 {
		t.Errorf("sentinel should be dropped, got %d", n)
	}
}

func TestLocation(t *testing.T) {
	if got := location(finding.Finding{Line: 3, Position: 0}); got != "3:1" {
		t.Errorf("location = %q, want 3:1", got)
	}
	if got := location(finding.Finding{Line: 3, Position: finding.NoColumn}); got != "3" {
		t.Errorf("location = %q, want 3", got)
	}
}
