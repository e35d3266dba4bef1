package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/coinsnap/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS coin_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL,
	price_usd TEXT NOT NULL,
	market_cap INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	provider_id TEXT
);
CREATE INDEX IF NOT EXISTS coin_snapshots_symbol_idx ON coin_snapshots (symbol COLLATE NOCASE, timestamp DESC);
CREATE TABLE IF NOT EXISTS refresh_marker (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	last_updated INTEGER
);
`

// SQLite is a Store backed by a SQLite file in WAL mode.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	// Pragmas go in the DSN so every pooled connection gets them.
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")

	db, err := sql.Open("sqlite", path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func (s *SQLite) ReplaceAll(ctx context.Context, batch []model.CoinSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM coin_snapshots`); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coin_snapshots (batch_id, symbol, name, price_usd, market_cap, timestamp, provider_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range batch {
		if _, err := stmt.ExecContext(ctx,
			r.BatchID.String(),
			r.Symbol,
			r.Name,
			r.PriceUSD.StringFixed(model.PricePrecision),
			r.MarketCap,
			r.Timestamp.UnixNano(),
			r.ProviderID,
		); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", r.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	return nil
}

const sqliteSelect = `SELECT id, batch_id, symbol, name, price_usd, market_cap, timestamp, provider_id FROM coin_snapshots`

func (s *SQLite) All(ctx context.Context) ([]model.CoinSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+` ORDER BY market_cap DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.CoinSnapshot
	for rows.Next() {
		snap, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return out, nil
}

func (s *SQLite) LatestBySymbol(ctx context.Context, symbol string) (model.CoinSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		sqliteSelect+` WHERE symbol = ? COLLATE NOCASE ORDER BY timestamp DESC, id DESC LIMIT 1`,
		symbol,
	)

	snap, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CoinSnapshot{}, ErrNotFound
	}
	return snap, err
}

func (s *SQLite) Marker(ctx context.Context) (model.RefreshMarker, error) {
	t, _, err := s.LastUpdated(ctx)
	if err != nil {
		return model.RefreshMarker{}, err
	}
	return model.RefreshMarker{LastUpdated: t}, nil
}

func (s *SQLite) SetLastUpdated(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_marker (id, last_updated) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET last_updated = excluded.last_updated`,
		t.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set last updated: %w", err)
	}
	return nil
}

func (s *SQLite) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	var ns sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT last_updated FROM refresh_marker WHERE id = 1`).Scan(&ns)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !ns.Valid) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read refresh marker: %w", err)
	}
	return time.Unix(0, ns.Int64).UTC(), true, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(r rowScanner) (model.CoinSnapshot, error) {
	var (
		snap    model.CoinSnapshot
		batchID string
		price   string
		ts      int64
	)

	if err := r.Scan(&snap.ID, &batchID, &snap.Symbol, &snap.Name, &price, &snap.MarketCap, &ts, &snap.ProviderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, err
		}
		return snap, fmt.Errorf("scan snapshot: %w", err)
	}

	return finishRow(snap, batchID, price, time.Unix(0, ts).UTC())
}

// finishRow parses the text-encoded columns shared by the SQL drivers.
func finishRow(snap model.CoinSnapshot, batchID, price string, ts time.Time) (model.CoinSnapshot, error) {
	id, err := uuid.Parse(batchID)
	if err != nil {
		return snap, fmt.Errorf("parse batch id %q: %w", batchID, err)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return snap, fmt.Errorf("parse price %q: %w", price, err)
	}

	snap.BatchID = id
	snap.PriceUSD = p
	snap.Timestamp = ts
	return snap, nil
}
