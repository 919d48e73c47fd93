package commands

import (
	"github.com/spf13/cobra"
)

func newRatesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Fetch today's exchange rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			return printRates(cmd.Context(), cmd.OutOrStdout(), a)
		},
	}
}
