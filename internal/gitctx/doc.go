// Package gitctx collects the source files a review run covers.
//
// Files come from the git index ([Staged]), from a branch comparison against
// the merge base ([Changed]), from every tracked file ([WalkFiles]) or from
// explicit paths ([Expand]). All selection goes through a doublestar
// [Filter]. [ChangedLines] turns a unified diff into the set of added lines
// per file, which drives changed-lines-only reviews and inline PR comments.
package gitctx
