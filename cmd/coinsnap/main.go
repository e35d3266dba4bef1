// Command coinsnap serves a catalog of cryptocurrency market snapshots,
// refreshed on demand from CoinGecko.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/coinsnap/internal/config"
	"github.com/rickgao/coinsnap/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the global flags shared by every subcommand.
type options struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "coinsnap",
		Short:         "Cryptocurrency market snapshot service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(opts.envFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (environment only when empty)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newFetchCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coinsnap %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", version.BuildTime)
		},
	}
}

// loadConfig loads the config, validating it when the command talks to the provider.
func (o *options) loadConfig(validate bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if validate {
		cfg, err = config.LoadAndValidate(o.configPath)
	} else {
		cfg, err = config.LoadWithDefaults(o.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}
