package semantic

import (
	"regexp"
	"strconv"
	"strings"
)

// Item is one accepted line of a model response.
type Item struct {
	Line    int
	Message string
}

var itemRe = regexp.MustCompile(`^Line\s+(\d+):(.*)$`)

// ParseResponse extracts the "Line <n>: <text>" entries from a model
// response. Anything else is ignored.
func ParseResponse(text string) []Item {
	if strings.TrimSpace(text) == NoIssuesResponse {
		return nil
	}
	var items []Item
	for _, raw := range strings.Split(text, "\n") {
		m := itemRe.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		items = append(items, Item{Line: n, Message: strings.TrimSpace(m[2])})
	}
	return items
}
