package semantic

import (
	"fmt"
	"strings"
)

// NoIssuesResponse is the exact reply meaning the model found nothing.
const NoIssuesResponse = "No issues found."

const systemInstruction = `You are a senior code reviewer who looks only at semantic issues.

The source file below is numbered; each line starts with "<number>: ".
Review it STRICTLY for:
- Whether variable and method names clearly describe what they hold or do
- Whether a name matches the behaviour behind it
- Whether a method does more than one thing (single responsibility)
- Boolean variables whose names are misleading or unclear

Do NOT comment on:
- Formatting, spacing, indentation, brace placement or line length
- Anything a static style checker would catch

Respond in exactly one of these forms:
- One issue per line, as: Line <number>: <issue>
- If there are no issues: No issues found.

Be concise and specific.`

// SystemInstruction returns the fixed instruction sent with every request.
func SystemInstruction() string {
	return systemInstruction
}

// NumberLines prefixes each line with its 1-based number as "n: line".
func NumberLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %s", i+1, line)
	}
	return b.String()
}
