package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/coinsnap/internal/api"
	"github.com/rickgao/coinsnap/internal/store"
)

// DefaultStaleAfter is the staleness window used when none is configured.
const DefaultStaleAfter = 5 * time.Minute

const flightKey = "refresh"

// MarketFetcher fetches the ranked top coins from the provider.
type MarketFetcher interface {
	GetTopCoins(ctx context.Context) ([]api.MarketCoin, error)
}

// IdentifierResolver maps a symbol or name to a provider id.
type IdentifierResolver interface {
	Resolve(ctx context.Context, symbol, name string) (string, bool)
}

// Result describes one completed refresh.
type Result struct {
	BatchID   uuid.UUID
	Timestamp time.Time
	Fetched   int // entries returned by the provider
	Stored    int // rows written after filtering
}

// Coordinator decides when to refresh and performs the refresh.
type Coordinator struct {
	store    store.Store
	fetcher  MarketFetcher
	resolver IdentifierResolver
	logger   *slog.Logger

	staleAfter   time.Duration
	now          func() time.Time
	singleFlight bool
	group        singleflight.Group
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStaleAfter sets the staleness window.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Coordinator) {
		c.staleAfter = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithoutSingleFlight lets concurrent stale readers each run their own refresh.
func WithoutSingleFlight() Option {
	return func(c *Coordinator) {
		c.singleFlight = false
	}
}

// New creates a Coordinator. resolver may be nil, in which case no provider
// ids are attached.
func New(s store.Store, fetcher MarketFetcher, resolver IdentifierResolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:        s,
		fetcher:      fetcher,
		resolver:     resolver,
		logger:       slog.Default(),
		staleAfter:   DefaultStaleAfter,
		now:          time.Now,
		singleFlight: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// StaleAfter returns the configured staleness window.
func (c *Coordinator) StaleAfter() time.Duration {
	return c.staleAfter
}

// EnsureFresh refreshes the catalog if the staleness window has elapsed and
// reports whether a refresh ran. Fetch failures are returned unchanged in the
// error chain; the stored batch and marker are left as they were.
func (c *Coordinator) EnsureFresh(ctx context.Context) (bool, error) {
	stale, err := c.isStale(ctx)
	if err != nil || !stale {
		return false, err
	}

	if !c.singleFlight {
		if _, err := c.refresh(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	v, err, shared := c.group.Do(flightKey, func() (any, error) {
		// Detached so a cancelled leader does not fail the callers sharing its flight.
		flightCtx := context.WithoutCancel(ctx)

		// Another flight may have finished between our check and this one starting.
		stale, err := c.isStale(flightCtx)
		if err != nil || !stale {
			return false, err
		}

		if _, err := c.refresh(flightCtx); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}

	if shared {
		c.logger.Debug("joined in-flight refresh")
	}

	// A joined forced Refresh yields a Result.
	switch v := v.(type) {
	case bool:
		return v, nil
	case Result:
		return true, nil
	}
	return false, nil
}

// Refresh fetches and stores a new batch regardless of staleness.
func (c *Coordinator) Refresh(ctx context.Context) (Result, error) {
	if !c.singleFlight {
		return c.refresh(ctx)
	}

	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return Result{}, err
	}

	// A joined EnsureFresh flight yields a bool; report what is stored now.
	if res, ok := v.(Result); ok {
		return res, nil
	}
	return c.current(ctx)
}

func (c *Coordinator) isStale(ctx context.Context) (bool, error) {
	marker, err := c.store.Marker(ctx)
	if err != nil {
		return false, fmt.Errorf("read refresh marker: %w", err)
	}
	return marker.IsStale(c.now(), c.staleAfter), nil
}

func (c *Coordinator) refresh(ctx context.Context) (Result, error) {
	start := time.Now()

	coins, err := c.fetcher.GetTopCoins(ctx)
	if err != nil {
		kind, _ := api.KindOf(err)
		c.logger.Warn("snapshot refresh failed",
			"error", err,
			"kind", kind.String(),
		)
		return Result{}, fmt.Errorf("fetch top coins: %w", err)
	}

	// One instant for the whole batch and the marker.
	ts := c.now().UTC().Truncate(time.Microsecond)
	batchID := uuid.New()

	var resolve ResolveFunc
	if c.resolver != nil {
		resolve = func(symbol, name string) (string, bool) {
			return c.resolver.Resolve(ctx, symbol, name)
		}
	}

	batch := BuildBatch(coins, ts, batchID, resolve)

	if err := c.store.ReplaceAll(ctx, batch); err != nil {
		return Result{}, fmt.Errorf("replace snapshots: %w", err)
	}
	if err := c.store.SetLastUpdated(ctx, ts); err != nil {
		return Result{}, fmt.Errorf("update refresh marker: %w", err)
	}

	res := Result{
		BatchID:   batchID,
		Timestamp: ts,
		Fetched:   len(coins),
		Stored:    len(batch),
	}

	c.logger.Info("snapshot refreshed",
		"batch_id", batchID,
		"fetched", res.Fetched,
		"stored", res.Stored,
		"duration", time.Since(start),
	)

	return res, nil
}

// current summarizes the stored batch after a refresh run by another caller.
func (c *Coordinator) current(ctx context.Context) (Result, error) {
	rows, err := c.store.All(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read snapshots: %w", err)
	}

	var res Result
	res.Stored = len(rows)
	if len(rows) > 0 {
		res.BatchID = rows[0].BatchID
		res.Timestamp = rows[0].Timestamp
	}
	return res, nil
}
