package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/config"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/receipts"
	"github.com/nextax/nextax/internal/service"
	"github.com/nextax/nextax/internal/storage"
	"github.com/spf13/cobra"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath()

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initReceipts opens the receipts directory that belongs to store.
func initReceipts(store *storage.SQLiteStorage) (*receipts.Store, error) {
	return receipts.NewStore(config.ReceiptsDir(store.Path()))
}

// autoBackup snapshots the database before a destructive operation.
func autoBackup(ctx context.Context, store *storage.SQLiteStorage, operation string) error {
	manager, err := store.NewBackupManager()
	if err != nil {
		return fmt.Errorf("failed to create backup manager: %w", err)
	}
	info, err := manager.AutoBackup(ctx, operation)
	if err != nil {
		return err
	}
	slog.Debug("automatic backup created", "id", info.ID, "operation", operation)
	return nil
}

func closeStore(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

func outf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func outln(cmd *cobra.Command, a ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), a...)
}

func newPrompter(cmd *cobra.Command) *cli.Prompter {
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// confirm asks before a destructive change unless force is set.
func confirm(cmd *cobra.Command, force bool, question string) (bool, error) {
	if force {
		return true, nil
	}
	return newPrompter(cmd).Confirm(cmd.Context(), question, false)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// parseOptionalDate parses a YYYY-MM-DD flag value; empty yields nil.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

var _ service.ReceiptStore = (*receipts.Store)(nil)
