package main

import (
	"fmt"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/config"
	"github.com/nextax/nextax/internal/receipts"
	"github.com/spf13/cobra"
)

func receiptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Inspect receipt storage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the receipts directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := receipts.NewStore(config.ReceiptsDir(config.DatabasePath()))
			if err != nil {
				return err
			}
			outln(cmd, rs.Dir())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check whether a file can be attached as a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := receipts.Validate(args[0])
			if !result.Valid {
				return fmt.Errorf("%s: %s", args[0], result.Error)
			}
			outln(cmd, cli.FormatSuccess(fmt.Sprintf("%s %s (%d bytes)", cli.ReceiptIcon, args[0], result.FileSize)))
			return nil
		},
	})

	return cmd
}
