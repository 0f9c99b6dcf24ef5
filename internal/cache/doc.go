// Package cache keeps semantic-classifier responses on disk so repeated
// reviews of unchanged files do not call the provider again.
//
// Keys are derived from the provider, model, instruction and the numbered,
// already-redacted file text. Entries older than the configured TTL are
// treated as misses and removed on read. The default location is
// $XDG_CACHE_HOME/refract or the platform equivalent.
package cache
