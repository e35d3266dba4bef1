// Package resolver maps a coin's ticker symbol or display name to the
// provider's canonical identifier.
//
// The provider directory is fetched once per process on first use and indexed
// by lower-cased symbol and by normalized name. A failed load leaves the
// directory empty for the rest of the process: every lookup misses, nothing
// is retried, and no error reaches the caller.
package resolver
