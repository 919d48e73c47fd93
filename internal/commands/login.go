package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check the enrolled passcode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}
}

func runLogin(cmd *cobra.Command, opts *rootOptions) error {
	a, err := opts.open(cmd)
	if err != nil {
		return err
	}
	if err := requireLogin(cmd.Context(), a); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Authenticated.")
	return nil
}
