// Package comments locates comment text in a source file and suppresses
// findings that point into it.
//
// [Scan] makes a single forward pass over the lines of a file and records,
// per line, the byte ranges covered by line comments and block comments.
// String and char literals are skipped so comment markers inside them are
// ignored. [Filter] then removes any finding whose position lies in one of
// those ranges, whichever stage produced it.
package comments
