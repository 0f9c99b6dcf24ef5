package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/refract/internal/review"
)

// JSONWriter outputs the full report as JSON, sentinels included. Messages
// often quote generic types such as List<String>, so HTML escaping is off.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}
