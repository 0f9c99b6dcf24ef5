// Package source holds the small text helpers shared by the checkers and
// the comment tracker: line splitting and literal masking.
package source
