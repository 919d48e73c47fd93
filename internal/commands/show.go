package commands

import (
	"github.com/spf13/cobra"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show the receipt for one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openConverted(cmd)
			if err != nil {
				return err
			}
			return printReceipt(cmd.OutOrStdout(), a, args[0])
		},
	}
}

func newReceiptCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Save or share transaction receipts",
	}
	cmd.AddCommand(newReceiptSaveCommand(opts), newReceiptShareCommand(opts))
	return cmd
}

func newReceiptSaveCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "save <ref>",
		Short: "Save a receipt into the receipts directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openConverted(cmd)
			if err != nil {
				return err
			}
			return saveReceipt(cmd.OutOrStdout(), a, args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "receipt format (default from config)")

	return cmd
}

func newReceiptShareCommand(opts *rootOptions) *cobra.Command {
	var format, to string

	cmd := &cobra.Command{
		Use:   "share <ref>",
		Short: "Write a receipt to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openConverted(cmd)
			if err != nil {
				return err
			}
			return shareReceipt(cmd.OutOrStdout(), a, args[0], format, to)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "receipt format (default from config)")
	cmd.Flags().StringVar(&to, "to", "", "write to this file instead of stdout")

	return cmd
}
