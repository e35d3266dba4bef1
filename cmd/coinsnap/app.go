package main

import (
	"context"
	"log/slog"

	"github.com/rickgao/coinsnap/internal/api"
	"github.com/rickgao/coinsnap/internal/config"
	"github.com/rickgao/coinsnap/internal/refresh"
	"github.com/rickgao/coinsnap/internal/resolver"
	"github.com/rickgao/coinsnap/internal/store"
)

// app holds the wired components shared by serve and fetch.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	client      *api.Client
	resolver    *resolver.Resolver
	store       store.Store
	coordinator *refresh.Coordinator
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	s, err := store.Open(ctx, cfg.Store, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithAPIKeyHeader(cfg.API.APIKeyHeader),
		api.WithTimeout(cfg.API.Timeout),
		api.WithDirectoryTimeout(cfg.API.DirectoryTimeout),
		api.WithRetries(cfg.API.DirectoryRetries, api.DefaultRetryBackoff),
	)

	res := resolver.New(client, logger, resolver.WithLoadTimeout(cfg.API.DirectoryTimeout))

	opts := []refresh.Option{
		refresh.WithLogger(logger),
		refresh.WithStaleAfter(cfg.Refresh.StaleAfter),
	}
	if cfg.Refresh.DisableSingleFlight {
		opts = append(opts, refresh.WithoutSingleFlight())
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		client:      client,
		resolver:    res,
		store:       s,
		coordinator: refresh.New(s, client, res, opts...),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", "error", err)
	}
}
