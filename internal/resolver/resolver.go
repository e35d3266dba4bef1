package resolver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/coinsnap/internal/api"
)

// DefaultLoadTimeout bounds the one-time directory fetch.
const DefaultLoadTimeout = 15 * time.Second

// DirectorySource provides the full provider coin directory.
type DirectorySource interface {
	GetCoinList(ctx context.Context) ([]api.CoinListEntry, error)
}

// directory is the immutable index built from one directory fetch.
type directory struct {
	entries  []api.CoinListEntry
	bySymbol map[string]string
	byName   map[string]string
}

func newDirectory(entries []api.CoinListEntry) *directory {
	d := &directory{
		entries:  entries,
		bySymbol: make(map[string]string, len(entries)),
		byName:   make(map[string]string, len(entries)),
	}

	// First occurrence wins for duplicate symbols and names.
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if sym := NormalizeSymbol(e.Symbol); sym != "" {
			if _, ok := d.bySymbol[sym]; !ok {
				d.bySymbol[sym] = e.ID
			}
		}
		if name := NormalizeName(e.Name); name != "" {
			if _, ok := d.byName[name]; !ok {
				d.byName[name] = e.ID
			}
		}
	}

	return d
}

// Resolver answers best-effort provider id lookups from a lazily loaded directory.
type Resolver struct {
	source      DirectorySource
	logger      *slog.Logger
	loadTimeout time.Duration

	once    sync.Once
	dir     atomic.Pointer[directory]
	fetches atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLoadTimeout overrides the directory load bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.loadTimeout = d
	}
}

// New creates a Resolver. The directory is not fetched until the first Resolve.
func New(source DirectorySource, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		source:      source,
		logger:      logger,
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the provider id for symbol, falling back to name when the
// symbol is unknown. An empty name skips the name lookup. A miss is not an error.
func (r *Resolver) Resolve(ctx context.Context, symbol, name string) (string, bool) {
	d := r.load(ctx)

	if id, ok := d.bySymbol[NormalizeSymbol(symbol)]; ok {
		return id, true
	}

	if name != "" {
		if id, ok := d.byName[NormalizeName(name)]; ok {
			return id, true
		}
	}

	r.logger.Debug("provider id not resolved", "symbol", symbol, "name", name)
	return "", false
}

// Loaded reports whether the one-time load has completed, successfully or not.
func (r *Resolver) Loaded() bool {
	return r.dir.Load() != nil
}

// Len returns the number of directory entries, 0 before load or after a failed load.
func (r *Resolver) Len() int {
	d := r.dir.Load()
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Fetches returns how many directory fetches were issued. At most 1.
func (r *Resolver) Fetches() int64 {
	return r.fetches.Load()
}

// load builds the directory exactly once. Concurrent first callers block until
// the single load finishes; later calls are a single atomic read.
func (r *Resolver) load(ctx context.Context) *directory {
	if d := r.dir.Load(); d != nil {
		return d
	}

	r.once.Do(func() {
		// Detached from the caller so one cancelled request cannot leave the
		// directory empty for the process lifetime.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		start := time.Now()
		r.fetches.Add(1)

		entries, err := r.source.GetCoinList(loadCtx)
		if err != nil {
			r.logger.Warn("coin directory load failed, provider ids disabled",
				"error", err,
				"duration", time.Since(start),
			)
			r.dir.Store(newDirectory(nil))
			return
		}

		d := newDirectory(entries)
		r.dir.Store(d)

		r.logger.Info("coin directory loaded",
			"entries", len(entries),
			"symbols", len(d.bySymbol),
			"names", len(d.byName),
			"duration", time.Since(start),
		)
	})

	return r.dir.Load()
}
