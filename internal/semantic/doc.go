// Package semantic implements the LLM-backed review stage.
//
// A file's lines are numbered and sent with a fixed instruction that asks
// only about naming clarity and single responsibility. The reply is either
// "No issues found." or a list of "Line <n>: <issue>" entries. Each entry
// is classified into one of three rule ids by keyword and takes its
// severity from the active rule set; entries that do not parse, point
// outside the file, or classify to an id the rule set lacks are dropped.
//
// Files longer than the configured line limit and files matching a
// redaction path are never sent.
package semantic
