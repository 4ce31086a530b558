package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/common"
	"github.com/nextax/nextax/internal/config"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/report"
	"github.com/nextax/nextax/internal/service"
	"github.com/nextax/nextax/internal/sheets"
	"github.com/nextax/nextax/internal/storage"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		year      int
		csvPath   string
		exportOut bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Annual report with the tax estimate",
		Args:  cobra.NoArgs,
		Long: `Build the annual report for a year: totals, monthly breakdown, categories,
VAT and the progressive tax estimate for the saved tax type.

Examples:
  nextax report --year 2025
  nextax report --year 2025 --csv .          # nexttax_report_<millis>.csv in the current directory
  nextax report --year 2025 --csv out.csv
  nextax report --year 2025 --export         # write to Google Sheets`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			rpt, err := buildReport(cmd, store, year)
			if err != nil {
				return err
			}
			outln(cmd, cli.RenderReport(rpt))

			if cmd.Flags().Changed("csv") {
				path, err := report.ExportCSV(csvPath, rpt.Transactions)
				if err != nil {
					return common.NewUserError("CSV export failed", err)
				}
				outln(cmd, cli.FormatSuccess("Exported CSV to "+path))
			}

			if exportOut {
				if err := exportToSheets(cmd, rpt); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", time.Now().Year(), "report year (Gregorian)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "export transactions to this CSV file or directory")
	cmd.Flags().BoolVar(&exportOut, "export", false, "write the report to Google Sheets")

	return cmd
}

func buildReport(cmd *cobra.Command, store *storage.SQLiteStorage, year int) (*report.Report, error) {
	ctx := cmd.Context()

	profile, err := store.GetBusinessProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load business profile: %w", err)
	}

	regime, err := store.GetTaxRegime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax type: %w", err)
	}

	start, end := model.CalendarYearPeriod(year)
	transactions, err := store.GetTransactions(ctx, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	rpt, err := report.Build(year, regime, transactions)
	if err != nil {
		return nil, err
	}
	rpt.BusinessName = profile.BusinessName
	return rpt, nil
}

func exportToSheets(cmd *cobra.Command, rpt *report.Report) error {
	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured (see 'nextax auth sheets')", err)
	}

	var writer service.ReportWriter
	writer, err = sheets.NewWriter(cmd.Context(), *sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}
	if err := writer.Write(cmd.Context(), rpt); err != nil {
		common.LogError(err, "Sheets export failed", common.Fields{
			"year":           rpt.Year,
			"spreadsheet_id": sheetsConfig.SpreadsheetID,
		})
		return fmt.Errorf("failed to export report: %w", err)
	}

	outln(cmd, cli.FormatSuccess("Exported report to Google Sheets"))
	return nil
}
