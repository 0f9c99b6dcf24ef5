// Package redact scrubs secrets from source text before it leaves the
// machine for an LLM provider.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private key headers, AWS credentials, bearer tokens, JDBC URLs with
// inline credentials, and provider-specific tokens. Replacements never
// span a newline, so line numbers reported by the classifier still refer to
// the original file.
//
// Files whose paths match the configured glob patterns are not sent at all.
package redact
