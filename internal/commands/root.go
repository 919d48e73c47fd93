package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reactbank/reactbank/internal/buildinfo"
	"github.com/reactbank/reactbank/internal/config"
	"github.com/reactbank/reactbank/internal/metrics"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "reactbank",
		Short:   "Transactions, currency conversion and receipts",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadDotEnv(opts.configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.metrics || opts.app == nil {
				return nil
			}
			return metrics.WriteText(cmd.OutOrStdout(), opts.app.Registry)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to reactbank.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.currency, "currency", "", "display currency (default from config)")
	rootCmd.PersistentFlags().BoolVar(&opts.metrics, "metrics", false, "print metrics after the command")

	rootCmd.AddCommand(
		newInitCommand(),
		newLoginCommand(opts),
		newListCommand(opts),
		newBalanceCommand(opts),
		newShowCommand(opts),
		newReceiptCommand(opts),
		newRatesCommand(opts),
		newShellCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}

// loadDotEnv reads .env next to the config file, if there is one.
func loadDotEnv(configPath string) error {
	path := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
