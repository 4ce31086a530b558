package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/receipts"
	"github.com/nextax/nextax/internal/service"
	"github.com/nextax/nextax/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and review income and expenses",
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(showTxCmd())
	cmd.AddCommand(updateTxCmd())
	cmd.AddCommand(deleteTxCmd())

	return cmd
}

// txFields are the editable transaction flags shared by add and update.
type txFields struct {
	txnType     string
	amount      string
	date        string
	description string
	vat         string
	notes       string
	receipt     string
	category    int
}

func (f *txFields) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.txnType, "type", "t", string(model.TypeExpense), "income or expense")
	flags.StringVarP(&f.amount, "amount", "a", "", "amount in baht, e.g. 1500 or 1,500.50")
	flags.StringVarP(&f.date, "date", "d", "", "transaction date YYYY-MM-DD (default today)")
	flags.StringVarP(&f.description, "description", "m", "", "description")
	flags.StringVar(&f.vat, "vat", string(model.VATNone), "VAT handling (none, inclusive, exclusive)")
	flags.StringVar(&f.notes, "notes", "", "free-form notes")
	flags.StringVar(&f.receipt, "receipt", "", "receipt file to attach (jpg, png, gif, webp, pdf)")
	flags.IntVarP(&f.category, "category", "c", 0, "category ID")
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// apply copies flags into txn. Only flags the user set are applied unless all is true.
func (f *txFields) apply(flags *pflag.FlagSet, txn *model.Transaction, all bool) error {
	changed := func(name string) bool { return all || flags.Changed(name) }

	if changed("type") {
		t, err := model.ParseTransactionType(f.txnType)
		if err != nil {
			return err
		}
		txn.Type = t
	}
	if changed("amount") {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return err
		}
		txn.Amount = amount
	}
	if flags.Changed("date") {
		d, err := model.ParseDate(f.date)
		if err != nil {
			return err
		}
		txn.Date = d
	} else if all {
		now := time.Now()
		txn.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if changed("description") {
		txn.Description = strings.TrimSpace(f.description)
	}
	if changed("vat") {
		v, err := model.ParseVATType(f.vat)
		if err != nil {
			return err
		}
		txn.VATType = v
	}
	if changed("notes") {
		txn.Notes = f.notes
	}
	if changed("category") {
		if f.category > 0 {
			id := f.category
			txn.CategoryID = &id
		} else {
			txn.CategoryID = nil
		}
	}
	return nil
}

// attachReceipt copies path into the receipts directory and records it on
// the transaction, removing any receipt it replaces.
func attachReceipt(cmd *cobra.Command, store *storage.SQLiteStorage, rs service.ReceiptStore, id int64, path string) error {
	name, err := rs.Save(path)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}

	previous, err := store.SetTransactionReceipt(cmd.Context(), id, name)
	if err != nil {
		rs.Delete(name)
		return fmt.Errorf("failed to attach receipt: %w", err)
	}
	if previous != "" && previous != name {
		rs.Delete(previous)
	}
	return nil
}

func addTxCmd() *cobra.Command {
	var fields txFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		Long: `Record an income or expense. VAT is computed from the amount and --vat.

Examples:
  nextax tx add --type income --amount 12000 --description "ขายกาแฟ" --category 1
  nextax tx add --amount 5350 --vat inclusive --description "ค่าไฟ" --receipt ~/bill.pdf`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if fields.amount == "" {
				return fmt.Errorf("--amount is required")
			}
			if fields.receipt != "" {
				if result := receipts.Validate(fields.receipt); !result.Valid {
					return fmt.Errorf("receipt %s: %s", fields.receipt, result.Error)
				}
			}
			txn := model.Transaction{Source: model.SourceManual}
			if err := fields.apply(cmd.Flags(), &txn, true); err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			id, err := store.CreateTransaction(ctx, &txn)
			if err != nil {
				return fmt.Errorf("failed to record transaction: %w", err)
			}

			if fields.receipt != "" {
				rs, err := initReceipts(store)
				if err != nil {
					return err
				}
				if err := attachReceipt(cmd, store, rs, id, fields.receipt); err != nil {
					return err
				}
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Recorded transaction #%d", id)))
			saved, err := store.GetTransaction(ctx, id)
			if err != nil {
				return err
			}
			outln(cmd, cli.RenderTransactions([]model.Transaction{*saved}))
			return nil
		},
	}

	fields.register(cmd.Flags())

	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		txnType  string
		from     string
		to       string
		search   string
		category int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			kind, err := parseOptionalType(txnType)
			if err != nil {
				return err
			}
			filter := service.TransactionFilter{
				Type:   kind,
				Search: search,
				Limit:  limit,
			}
			if filter.StartDate, err = parseOptionalDate(from); err != nil {
				return err
			}
			if filter.EndDate, err = parseOptionalDate(to); err != nil {
				return err
			}
			if category > 0 {
				filter.CategoryID = &category
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			transactions, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			outln(cmd, cli.RenderTransactions(transactions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&txnType, "type", "t", "", "only income or expense")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match description or notes")
	cmd.Flags().IntVarP(&category, "category", "c", 0, "only this category ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows (0 for all)")

	return cmd
}

func showTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			txn, err := store.GetTransaction(ctx, id)
			if err != nil {
				return err
			}

			receiptPath := ""
			if txn.ReceiptPath != "" {
				rs, err := initReceipts(store)
				if err != nil {
					return err
				}
				if receiptPath, err = rs.Path(txn.ReceiptPath); err != nil {
					return err
				}
				if !rs.Exists(txn.ReceiptPath) {
					receiptPath += " " + cli.WarningStyle.Render("(missing)")
				}
			}

			outln(cmd, cli.RenderTransaction(txn, receiptPath))
			return nil
		},
	}
}

func updateTxCmd() *cobra.Command {
	var (
		fields        txFields
		removeReceipt bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a transaction",
		Long:  `Change the given fields of a transaction. VAT is recomputed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if removeReceipt && fields.receipt != "" {
				return fmt.Errorf("--receipt and --remove-receipt cannot be combined")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			txn, err := store.GetTransaction(ctx, id)
			if err != nil {
				return err
			}
			if err := fields.apply(cmd.Flags(), txn, false); err != nil {
				return err
			}
			if err := store.UpdateTransaction(ctx, id, txn); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			if fields.receipt != "" || removeReceipt {
				rs, err := initReceipts(store)
				if err != nil {
					return err
				}
				if removeReceipt {
					previous, err := store.SetTransactionReceipt(ctx, id, "")
					if err != nil {
						return err
					}
					rs.Delete(previous)
				} else if err := attachReceipt(cmd, store, rs, id, fields.receipt); err != nil {
					return err
				}
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Updated transaction #%d", id)))
			return nil
		},
	}

	fields.register(cmd.Flags())
	cmd.Flags().BoolVar(&removeReceipt, "remove-receipt", false, "detach and delete the receipt file")

	return cmd
}

func deleteTxCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and its receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			txn, err := store.GetTransaction(ctx, id)
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, force, fmt.Sprintf("Delete transaction #%d %q?", id, txn.Description))
			if err != nil {
				return err
			}
			if !ok {
				outln(cmd, cli.SubtleStyle.Render("Deletion cancelled."))
				return nil
			}

			receipt, err := store.DeleteTransaction(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}
			if receipt != "" {
				rs, err := initReceipts(store)
				if err != nil {
					return err
				}
				if !rs.Delete(receipt) {
					slog.Warn("receipt file was not removed", "receipt", receipt)
				}
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted transaction #%d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
