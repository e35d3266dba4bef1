package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/coinsnap/internal/store"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the last refresh time and stored batch size",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Status only reads the store, so no API key is required.
			cfg, err := opts.loadConfig(false)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, os.Stderr)

			s, err := store.Open(cmd.Context(), cfg.Store, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			last, ok, err := s.LastUpdated(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := s.All(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "last updated: never")
			} else {
				age := time.Since(last).Truncate(time.Second)
				state := "fresh"
				if age >= cfg.Refresh.StaleAfter {
					state = "stale"
				}
				fmt.Fprintf(out, "last updated: %s (%s ago, %s)\n", last.Format(time.RFC3339), age, state)
			}
			fmt.Fprintf(out, "snapshots:    %d\n", len(rows))
			return nil
		},
	}
}
