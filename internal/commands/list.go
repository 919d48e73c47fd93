package commands

import (
	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var doRefresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with the total balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, doRefresh)
		},
	}

	cmd.Flags().BoolVar(&doRefresh, "refresh", false, "pull to refresh before listing")

	return cmd
}

func runList(cmd *cobra.Command, opts *rootOptions, doRefresh bool) error {
	a, err := opts.openConverted(cmd)
	if err != nil {
		return err
	}
	if doRefresh {
		if err := a.Transactions.Refresh(cmd.Context()); err != nil {
			return err
		}
	}
	return printList(cmd.OutOrStdout(), a)
}

func newBalanceCommand(opts *rootOptions) *cobra.Command {
	var withChart bool
	var width, height int

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the total balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openConverted(cmd)
			if err != nil {
				return err
			}
			return printBalance(cmd.OutOrStdout(), a, withChart, width, height)
		},
	}

	cmd.Flags().BoolVar(&withChart, "chart", false, "plot the running balance")
	cmd.Flags().IntVar(&width, "width", defaultChartWidth, "chart width in cells")
	cmd.Flags().IntVar(&height, "height", defaultChartHeight, "chart height in cells")

	return cmd
}
