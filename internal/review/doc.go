// Package review is the aggregator at the centre of refract.
//
// An Engine loads the rule set once per run, runs the registered checkers
// over each file, optionally asks the semantic stage for naming and
// responsibility issues, and merges both lists without de-duplication.
// Findings that sit inside comment text are then dropped, and a file with
// nothing left gets a single NO_ISSUES sentinel.
//
// A failing stage never fails the run. A missing or malformed rule source
// skips the static stage, a provider that cannot be built skips the
// semantic stage for the run, and a failed provider call skips it for
// that file. Each case is recorded as a Warning on the Report and logged.
//
// RunFiles reviews many files with bounded parallelism and keeps the
// report in input order.
package review
