package commands

import (
	"github.com/spf13/cobra"

	"github.com/reactbank/reactbank/internal/api"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Log in, then serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, addr string) error {
	a, err := opts.open(cmd)
	if err != nil {
		return err
	}
	if err := requireLogin(cmd.Context(), a); err != nil {
		return err
	}
	if err := selectCurrency(cmd.Context(), a, opts.currency); err != nil {
		return err
	}
	if addr == "" {
		addr = a.Config.API.Addr
	}
	return api.Serve(cmd.Context(), a, addr)
}
