// Package checks implements the static style checkers.
//
// Each [Checker] is a pure function over the raw text of one file. None of
// them parse the source: they work line by line with regular expressions
// and a little carried state (an indentation level, a generic nesting
// depth) and accept the occasional false positive or negative that comes
// with that. A [Registry] dispatches rules to checkers by id.
package checks
