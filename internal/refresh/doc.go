// Package refresh owns the staleness policy for the snapshot catalog.
//
// The Coordinator compares the refresh marker against the staleness window.
// When the window has elapsed it fetches the top coins, filters and ranks
// them, resolves provider ids, and replaces the stored batch. A failed fetch
// leaves both the stored batch and the marker untouched so the next read
// retries.
//
// Concurrent stale readers share one refresh through a singleflight group.
package refresh
