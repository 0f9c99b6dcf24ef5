// Refract is a CLI that reviews Java-style source against a style rule set.
//
// Deterministic checkers cover spacing, layout, braces, naming and structure;
// findings inside comments are suppressed. An optional semantic stage asks an
// LLM provider about naming intent and single responsibility and maps its
// answers onto the same rule ids. Findings are emitted with deterministic exit
// codes suitable for CI gating and git hooks.
//
// Usage:
//
//	refract review files src/             # review files and directories
//	refract review staged                 # review staged content
//	refract review changed --base main    # review files changed on a branch
//	refract review codebase               # review all tracked files
//	refract review snippet --path A.java  # review source from stdin
//	refract github 42                     # review a PR and post comments
//
// Pass --llm to any review command to enable the semantic stage.
package main
