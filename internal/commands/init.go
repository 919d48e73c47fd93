package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reactbank/reactbank/internal/auth"
	"github.com/reactbank/reactbank/internal/config"
	"github.com/reactbank/reactbank/internal/transactions"
)

func newInitCommand() *cobra.Command {
	var passcode string
	var force bool
	var exportTransactions bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ReactBank workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, passcode, force, exportTransactions)
		},
	}

	cmd.Flags().StringVar(&passcode, "passcode", "", "enrol a login passcode")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing reactbank.yaml")
	cmd.Flags().BoolVar(&exportTransactions, "export-transactions", false, "write the mock transactions to transactions.csv and use it as the source")

	return cmd
}

func runInit(out io.Writer, dir, passcode string, force, exportTransactions bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default()

	for _, d := range []string{cfg.Receipts.Dir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if passcode != "" {
		hash, err := auth.HashPasscode(passcode)
		if err != nil {
			return err
		}
		cfg.Auth.PasscodeHash = hash
	}

	if exportTransactions {
		const name = "transactions.csv"
		svc := transactions.NewService(transactions.Defaults())
		if err := svc.Save(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("writing transactions: %w", err)
		}
		cfg.Transactions.Source = name
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	gitignore := cfg.Receipts.Dir + "/\nlogs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized ReactBank workspace at %s\n", dir)
	if passcode == "" {
		fmt.Fprintln(out, "No passcode enrolled; rerun with --force --passcode to enable login.")
	}
	return nil
}
