package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/coinsnap/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS coin_snapshots (
	id BIGSERIAL PRIMARY KEY,
	batch_id UUID NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL,
	price_usd NUMERIC(24, 2) NOT NULL CHECK (price_usd >= 0),
	market_cap BIGINT NOT NULL CHECK (market_cap >= 0),
	timestamp TIMESTAMPTZ NOT NULL,
	provider_id TEXT
);
CREATE INDEX IF NOT EXISTS coin_snapshots_symbol_idx ON coin_snapshots (upper(symbol), timestamp DESC);
CREATE TABLE IF NOT EXISTS refresh_marker (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	last_updated TIMESTAMPTZ
);
`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	db *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres wraps an existing pool. Call Migrate before first use.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// ReplaceAll deletes and re-inserts the batch in one transaction. The marker row
// is locked first so concurrent replaces from other processes run one at a time.
func (p *Postgres) ReplaceAll(ctx context.Context, batch []model.CoinSnapshot) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO refresh_marker (id, last_updated) VALUES (1, NULL) ON CONFLICT (id) DO NOTHING`); err != nil {
		return fmt.Errorf("ensure marker row: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT 1 FROM refresh_marker WHERE id = 1 FOR UPDATE`); err != nil {
		return fmt.Errorf("lock marker row: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM coin_snapshots`); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}

	b := &pgx.Batch{}
	for _, r := range batch {
		b.Queue(`
			INSERT INTO coin_snapshots (batch_id, symbol, name, price_usd, market_cap, timestamp, provider_id)
			VALUES ($1::uuid, $2, $3, $4::numeric, $5, $6, $7)
		`, r.BatchID.String(), r.Symbol, r.Name, r.PriceUSD.StringFixed(model.PricePrecision), r.MarketCap, r.Timestamp, r.ProviderID)
	}

	results := tx.SendBatch(ctx, b)
	for _, r := range batch {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert snapshot %s: %w", r.Symbol, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	return nil
}

const postgresSelect = `SELECT id, batch_id::text, symbol, name, price_usd::text, market_cap, timestamp, provider_id FROM coin_snapshots`

func (p *Postgres) All(ctx context.Context) ([]model.CoinSnapshot, error) {
	rows, err := p.db.Query(ctx, postgresSelect+` ORDER BY market_cap DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.CoinSnapshot
	for rows.Next() {
		snap, err := scanPostgres(rows)
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

func (p *Postgres) LatestBySymbol(ctx context.Context, symbol string) (model.CoinSnapshot, error) {
	row := p.db.QueryRow(ctx,
		postgresSelect+` WHERE upper(symbol) = upper($1) ORDER BY timestamp DESC, id DESC LIMIT 1`,
		symbol,
	)

	snap, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CoinSnapshot{}, ErrNotFound
	}
	return snap, err
}

func (p *Postgres) Marker(ctx context.Context) (model.RefreshMarker, error) {
	t, _, err := p.LastUpdated(ctx)
	if err != nil {
		return model.RefreshMarker{}, err
	}
	return model.RefreshMarker{LastUpdated: t}, nil
}

func (p *Postgres) SetLastUpdated(ctx context.Context, t time.Time) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO refresh_marker (id, last_updated) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET last_updated = EXCLUDED.last_updated`,
		t,
	)
	if err != nil {
		return fmt.Errorf("set last updated: %w", err)
	}
	return nil
}

func (p *Postgres) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	var t *time.Time
	err := p.db.QueryRow(ctx, `SELECT last_updated FROM refresh_marker WHERE id = 1`).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && t == nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read refresh marker: %w", err)
	}
	return t.UTC(), true, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Close closes the underlying pool.
func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func scanPostgres(r pgx.Row) (model.CoinSnapshot, error) {
	var (
		snap    model.CoinSnapshot
		batchID string
		price   string
		ts      time.Time
	)

	if err := r.Scan(&snap.ID, &batchID, &snap.Symbol, &snap.Name, &price, &snap.MarketCap, &ts, &snap.ProviderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snap, err
		}
		return snap, fmt.Errorf("scan snapshot: %w", err)
	}

	return finishRow(snap, batchID, price, ts.UTC())
}
