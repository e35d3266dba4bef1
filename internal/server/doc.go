// Package server exposes the snapshot catalog over HTTP.
//
// Routes:
//   - GET /prices/          all snapshots, market cap descending
//   - GET /{symbol}/        one snapshot, symbol matched case-insensitively
//   - GET /refresh-status/  last refresh time, never triggers a refresh
//   - GET /health           store and resolver state
//
// Read routes call EnsureFresh first. When that refresh fails the stored data
// is still served and the failure kind is reported in X-Refresh-Error.
package server
