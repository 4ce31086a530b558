package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/common"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/money"
	"github.com/nextax/nextax/internal/ofx"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	var (
		dryRun  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX bank statements",
		Long: `Import transactions from OFX or QFX files exported from your bank.
Credits become income, debits become expenses. Rows already imported are skipped.

Examples:
  # Import single file
  nextax import-ofx ~/Downloads/kbank_2025_01.ofx

  # Import all statements in a directory
  nextax import-ofx ~/Downloads/statements/*.ofx

  # Preview without saving
  nextax import-ofx --dry-run ~/Downloads/scb.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportOFX(cmd, args, dryRun, verbose)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview import without saving")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every parsed transaction")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return lo.Uniq(files), nil
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) (*ofx.Statement, error) {
	// #nosec G304 - path is a statement file named on the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(cmd.Context(), f)
}

func runImportOFX(cmd *cobra.Command, args []string, dryRun, verbose bool) error {
	ctx := cmd.Context()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reading statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var all []model.Transaction
	skipped := 0

	for _, path := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stmt, err := parseStatement(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
		} else {
			skipped += stmt.Skipped
			added := 0
			for _, txn := range stmt.Transactions {
				if seen[txn.ExternalID] {
					continue
				}
				seen[txn.ExternalID] = true
				all = append(all, txn)
				added++
			}
			slog.Debug("Processed file",
				"file", filepath.Base(path),
				"transactions_found", len(stmt.Transactions),
				"added", added,
				"accounts", stmt.Accounts)
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	if len(all) == 0 {
		outln(cmd, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	printImportSummary(cmd, all, skipped)
	if verbose {
		outln(cmd, cli.RenderTransactions(all))
	}

	if dryRun {
		outln(cmd, cli.FormatInfo("Dry run complete - no data saved"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if err := autoBackup(ctx, store, "import"); err != nil {
		return err
	}

	inserted, err := store.SaveImportedTransactions(ctx, all)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	common.LogInfo("OFX import finished", common.Fields{
		"files":      len(args),
		"imported":   inserted,
		"duplicates": len(all) - inserted,
	})
	outln(cmd, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d already imported)", inserted, len(all)-inserted)))
	return nil
}

func printImportSummary(cmd *cobra.Command, transactions []model.Transaction, skipped int) {
	oldest := lo.MinBy(transactions, func(a, b model.Transaction) bool { return a.Date.Before(b.Date) })
	newest := lo.MaxBy(transactions, func(a, b model.Transaction) bool { return a.Date.After(b.Date) })

	sum := func(kind model.TransactionType) decimal.Decimal {
		return lo.Reduce(transactions, func(acc decimal.Decimal, t model.Transaction, _ int) decimal.Decimal {
			if t.Type != kind {
				return acc
			}
			return acc.Add(t.Amount)
		}, decimal.Zero)
	}

	outf(cmd, "📅 %s to %s\n", oldest.Date.Format(model.DateLayout), newest.Date.Format(model.DateLayout))
	outf(cmd, "   %d transactions: income %s, expenses %s\n",
		len(transactions),
		cli.IncomeStyle.Render(money.FormatTHB(sum(model.TypeIncome))),
		cli.ExpenseStyle.Render(money.FormatTHB(sum(model.TypeExpense))))
	if skipped > 0 {
		outf(cmd, "   %s\n", cli.SubtleStyle.Render(fmt.Sprintf("%d zero-amount rows skipped", skipped)))
	}
}
