// Package store persists the current snapshot batch and the refresh marker.
//
// Three drivers implement Store:
//   - Postgres: pgx pool, the production driver
//   - SQLite: single-node deployments and in-process tests
//   - Memory: tests and throwaway runs
//
// ReplaceAll swaps the whole batch in one transaction. Readers see either the
// previous batch or the new one, never an empty or mixed set.
package store
