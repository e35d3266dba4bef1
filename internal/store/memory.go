package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rickgao/coinsnap/internal/model"
)

// Memory is an in-process Store. ReplaceAll swaps the batch slice under a lock.
type Memory struct {
	mu          sync.RWMutex
	rows        []model.CoinSnapshot
	lastUpdated time.Time
	hasMarker   bool
	nextID      int64
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) ReplaceAll(ctx context.Context, batch []model.CoinSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]model.CoinSnapshot, len(batch))
	for i, s := range batch {
		s.ID = m.nextID
		m.nextID++
		rows[i] = s
	}
	m.rows = rows

	return nil
}

func (m *Memory) All(ctx context.Context) ([]model.CoinSnapshot, error) {
	m.mu.RLock()
	rows := slices.Clone(m.rows)
	m.mu.RUnlock()

	sortByMarketCap(rows)
	return rows, nil
}

func (m *Memory) LatestBySymbol(ctx context.Context, symbol string) (model.CoinSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best  model.CoinSnapshot
		found bool
	)
	for _, s := range m.rows {
		if !strings.EqualFold(s.Symbol, symbol) {
			continue
		}
		if !found || s.Timestamp.After(best.Timestamp) {
			best = s
			found = true
		}
	}

	if !found {
		return model.CoinSnapshot{}, ErrNotFound
	}
	return best, nil
}

func (m *Memory) Marker(ctx context.Context) (model.RefreshMarker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.RefreshMarker{LastUpdated: m.lastUpdated}, nil
}

func (m *Memory) SetLastUpdated(ctx context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdated = t
	m.hasMarker = true
	return nil
}

func (m *Memory) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated, m.hasMarker, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// sortByMarketCap orders rows by market cap descending, then by id.
func sortByMarketCap(rows []model.CoinSnapshot) {
	slices.SortStableFunc(rows, func(a, b model.CoinSnapshot) int {
		switch {
		case a.MarketCap > b.MarketCap:
			return -1
		case a.MarketCap < b.MarketCap:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
