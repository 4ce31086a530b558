package main

import (
	"fmt"
	"log/slog"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/config"
	"github.com/nextax/nextax/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		Long: `Initialize or update the database schema to the latest version.

Every command migrates on start, so this is only needed to check
the schema or prepare a database ahead of time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbPath := config.DatabasePath()

			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer closeStore(store)

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if status {
				outf(cmd, "Database: %s\n", dbPath)
				outf(cmd, "Schema version: %d (latest %d)\n", current, storage.ExpectedSchemaVersion)
				if current < storage.ExpectedSchemaVersion {
					outln(cmd, cli.FormatWarning("Migrations pending. Run 'nextax migrate'."))
				}
				return nil
			}

			slog.Info("Running database migrations", "database", dbPath, "from_version", current)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Database schema is at version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show current migration status without applying changes")

	return cmd
}
