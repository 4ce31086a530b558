package main

import (
	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/money"
	"github.com/nextax/nextax/internal/tax"
	"github.com/spf13/cobra"
)

func taxCmd() *cobra.Command {
	var amount, regime string

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Calculate progressive tax for an amount",
		Args:  cobra.NoArgs,
		Long: `Calculate tax on a taxable amount without touching the database.
The amount is net of VAT and deductions. Negative amounts owe nothing.

Examples:
  nextax tax --amount 500000
  nextax tax --amount 1,200,000 --regime sme`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			r, err := tax.ParseRegime(regime)
			if err != nil {
				return err
			}

			result, err := tax.ForRegime(r, value)
			if err != nil {
				return err
			}

			outln(cmd, cli.SectionStyle.Render(r.Label()))
			outln(cmd, cli.RenderTaxBreakdown(result, money.NonNegative(value)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "taxable amount in baht")
	cmd.Flags().StringVarP(&regime, "regime", "r", string(tax.DefaultRegime), "tax regime (personal, sme)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
