package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher refreshes the catalog when it is stale.
type Refresher interface {
	EnsureFresh(ctx context.Context) (bool, error)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Tick interval
	Timeout  time.Duration // Per-tick timeout (default: 60s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
		Timeout:  60 * time.Second,
	}
}

// Stats counts tick outcomes.
type Stats struct {
	Ticks     int64
	Refreshes int64
	Errors    int64
}

// Poller periodically calls EnsureFresh.
type Poller struct {
	cfg       Config
	refresher Refresher
	logger    *slog.Logger

	ticks     atomic.Int64
	refreshes atomic.Int64
	errors    atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, refresher Refresher, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Poller{
		cfg:       cfg,
		refresher: refresher,
		logger:    logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	if p.cfg.Interval <= 0 {
		return errors.New("poller interval must be positive")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("refresh poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("refresh poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns tick counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Ticks:     p.ticks.Load(),
		Refreshes: p.refreshes.Load(),
		Errors:    p.errors.Load(),
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.tick()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick runs one freshness check.
func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	p.ticks.Add(1)

	refreshed, err := p.refresher.EnsureFresh(ctx)
	if err != nil {
		p.errors.Add(1)
		p.logger.Warn("background refresh failed",
			"error", err,
			"duration", time.Since(start),
		)
		return
	}

	if refreshed {
		p.refreshes.Add(1)
	}

	p.logger.Debug("poll cycle complete",
		"refreshed", refreshed,
		"duration", time.Since(start),
	)
}
