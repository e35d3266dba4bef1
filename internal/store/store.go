package store

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/coinsnap/internal/model"
)

// ErrNotFound is returned when no snapshot matches a symbol.
var ErrNotFound = errors.New("snapshot not found")

// Store holds the current snapshot batch and the singleton refresh marker.
type Store interface {
	// ReplaceAll atomically replaces every stored snapshot with batch.
	ReplaceAll(ctx context.Context, batch []model.CoinSnapshot) error

	// All returns the stored snapshots ordered by market cap descending.
	All(ctx context.Context) ([]model.CoinSnapshot, error)

	// LatestBySymbol returns the newest snapshot whose symbol matches
	// case-insensitively, or ErrNotFound.
	LatestBySymbol(ctx context.Context, symbol string) (model.CoinSnapshot, error)

	// Marker returns the refresh marker. A missing marker reads as the zero time.
	Marker(ctx context.Context) (model.RefreshMarker, error)

	// SetLastUpdated upserts the refresh marker.
	SetLastUpdated(ctx context.Context, t time.Time) error

	// LastUpdated returns the marker time, with ok false when none was ever set.
	LastUpdated(ctx context.Context) (t time.Time, ok bool, err error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)
