// Package output formats review reports for display or machine consumption.
//
// Five formats are supported:
//   - text     human-readable terminal output, coloured on a TTY (default)
//   - json     the full structured report, NO_ISSUES sentinels included
//   - markdown PR-comment-friendly, one collapsible table per file
//   - sarif    SARIF v2.1.0 for code-scanning upload
//   - github   GitHub Actions annotations (::error, ::warning, ::notice)
//
// Every format except json drops sentinels and orders a file's findings by
// line, then column. Columns are shown 1-based.
package output
