// Package cli wires together the Cobra command tree for the refract binary.
//
// It defines the root command and all subcommands (review, github, config,
// rules, models, cache, hook, version), binds flags, reads configuration,
// builds the review engine, and returns deterministic exit codes for CI
// gating.
package cli
