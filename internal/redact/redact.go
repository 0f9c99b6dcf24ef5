package redact

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Placeholder replaces every detected secret.
const Placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types. None of them
// may match across a newline, so redaction never changes line numbering.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)[ \t]*[:=][ \t]*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)[ \t]*[:=][ \t]*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Secrets, tokens and passwords assigned string literals
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)[ \t]*[:=][ \t]*["']([^"'\n]{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer[ \t]+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key headers
	regexp.MustCompile(`-----BEGIN[ \t]+(RSA[ \t]+|EC[ \t]+|OPENSSH[ \t]+)?PRIVATE KEY-----`),
	// JDBC URLs with inline credentials
	regexp.MustCompile(`(?i)jdbc:[a-z0-9]+://[^\s:/@"']+:[^\s@"']+@`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Long hex strings in key assignments
	regexp.MustCompile(`(?i)(key|secret|token)[ \t]*[:=][ \t]*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with Placeholder and reports how
// many replacements were made. The result has the same number of lines as
// text.
func Secrets(text string) (string, int) {
	n := 0
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllStringFunc(result, func(string) string {
			n++
			return Placeholder
		})
	}
	return result, n
}

// Path reports whether path matches any of the glob patterns. Patterns use
// doublestar syntax; a pattern without a separator also matches the base
// name, so "*.pem" hits "certs/server.pem".
func Path(path string, patterns []string) bool {
	p := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, filepath.Base(p)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
