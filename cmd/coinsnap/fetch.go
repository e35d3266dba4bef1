package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newFetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and store a fresh snapshot batch now",
		Long:  "Fetch the top coins from CoinGecko and replace the stored batch, ignoring the staleness window.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(true)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, os.Stderr)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.coordinator.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d of %d coins (batch %s at %s)\n",
				res.Stored, res.Fetched, res.BatchID, res.Timestamp.Format(time.RFC3339))
			return nil
		},
	}
}
