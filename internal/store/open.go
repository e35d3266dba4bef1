package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/coinsnap/internal/config"
	"github.com/rickgao/coinsnap/internal/database"
)

// Open builds the Store selected by cfg.Driver and applies its schema.
func Open(ctx context.Context, cfg config.StoreConfig, db config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverPostgres:
		pool, err := database.Connect(ctx, db.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := NewPostgres(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("snapshot store ready", "driver", cfg.Driver)
		return s, nil

	case DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("snapshot store ready", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return s, nil

	case DriverMemory:
		logger.Info("snapshot store ready", "driver", cfg.Driver)
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
