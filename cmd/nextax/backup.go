package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/storage"
	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Create, list, restore and delete database backups.

Backups are kept in a "backups" directory next to the database.
Automatic backups are taken before imports and settings resets.`,
	}

	cmd.AddCommand(createBackupCmd())
	cmd.AddCommand(listBackupsCmd())
	cmd.AddCommand(restoreBackupCmd())
	cmd.AddCommand(deleteBackupCmd())

	return cmd
}

// withBackupManager opens storage and hands its backup manager to fn.
func withBackupManager(cmd *cobra.Command, fn func(*storage.BackupManager) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store)

	manager, err := store.NewBackupManager()
	if err != nil {
		return fmt.Errorf("failed to create backup manager: %w", err)
	}
	return fn(manager)
}

func createBackupCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [tag]",
		Short: "Back up the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}

			return withBackupManager(cmd, func(manager *storage.BackupManager) error {
				info, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}

				outf(cmd, "%s Created backup %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				if info.Description != "" {
					outf(cmd, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "m", "", "note stored with the backup")

	return cmd
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackupManager(cmd, func(manager *storage.BackupManager) error {
				backups, err := manager.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list backups: %w", err)
				}

				if len(backups) == 0 {
					outln(cmd, cli.SubtleStyle.Render("No backups found."))
					return nil
				}

				t := cli.NewTable("NAME", "CREATED", "SIZE", "TRANSACTIONS", "CATEGORIES", "SPAN", "TYPE")
				for _, b := range backups {
					kind := "manual"
					if b.IsAuto {
						kind = "auto"
					}
					t.Row(
						b.ID,
						formatRelativeTime(b.CreatedAt),
						formatFileSize(b.FileSize),
						strconv.Itoa(b.Transactions),
						strconv.Itoa(b.Categories),
						b.Span(),
						kind,
					)
				}
				outln(cmd, cli.TitleStyle.Render(fmt.Sprintf("%s %d backups", cli.BackupIcon, len(backups))))
				outln(cmd, t.String())
				return nil
			})
		},
	}
}

func restoreBackupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(cmd, force, fmt.Sprintf("Replace the current database with backup %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				outln(cmd, cli.SubtleStyle.Render("Restore cancelled."))
				return nil
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			manager, err := store.NewBackupManager()
			if err != nil {
				closeStore(store)
				return fmt.Errorf("failed to create backup manager: %w", err)
			}

			// Restore closes the connection itself.
			if err := manager.Restore(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to restore backup: %w", err)
			}

			outf(cmd, "%s Restored from backup %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteBackupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <backup-id>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(cmd, force, fmt.Sprintf("Permanently delete backup %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				outln(cmd, cli.SubtleStyle.Render("Deletion cancelled."))
				return nil
			}

			return withBackupManager(cmd, func(manager *storage.BackupManager) error {
				if err := manager.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete backup: %w", err)
				}
				outf(cmd, "%s Deleted backup %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(args[0]))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
