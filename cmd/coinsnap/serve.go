package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/coinsnap/internal/poller"
	"github.com/rickgao/coinsnap/internal/server"
	"github.com/rickgao/coinsnap/internal/version"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(true)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Logging, os.Stdout)
			logger.Info("starting coinsnap",
				"version", version.Version,
				"commit", version.Commit,
				"config", opts.configPath,
				"store", cfg.Store.Driver,
			)

			// Create context with cancellation
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle shutdown signals
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					logger.Info("received shutdown signal", "signal", sig)
					cancel()
				case <-ctx.Done():
				}
			}()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if cfg.Refresh.BackgroundInterval > 0 {
				p := poller.New(poller.Config{
					Interval: cfg.Refresh.BackgroundInterval,
					Timeout:  cfg.API.Timeout + cfg.API.DirectoryTimeout,
				}, a.coordinator, logger)
				if err := p.Start(ctx); err != nil {
					return err
				}
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer shutdownCancel()
					p.Stop(shutdownCtx)
				}()
			}

			srv := server.New(server.Config{
				Addr:           net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
				ReadTimeout:    cfg.Server.ReadTimeout,
				WriteTimeout:   cfg.Server.WriteTimeout,
				RequestTimeout: cfg.Server.RequestTimeout,
			}, a.store, a.coordinator, a.resolver, logger)

			if err := srv.Run(ctx); err != nil {
				return err
			}

			logger.Info("coinsnap stopped")
			return nil
		},
	}
}
