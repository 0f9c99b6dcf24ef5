// Package config loads and merges refract configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REFRACT_PROVIDER, LLM_PROVIDER, REFRACT_MODEL,
//     REFRACT_FAIL_ON, REFRACT_LLM, etc.)
//  3. Config file ($XDG_CONFIG_HOME/refract/config.json)
//  4. Built-in defaults
//
// Every source writes through [SetField], so a key means the same thing on
// the command line, in the environment and in `refract config set`. The
// merged result is checked with [Config.Validate].
package config
