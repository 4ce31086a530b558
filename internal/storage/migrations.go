package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

type seedCategory struct {
	name  string
	kind  string
	color string
}

var defaultCategories = []seedCategory{
	{"ขายสินค้า (Sales)", "income", "#10B981"},
	{"ค่าบริการ (Services)", "income", "#06B6D4"},
	{"รายได้อื่น (Other income)", "income", "#3B82F6"},
	{"วัตถุดิบ (Materials)", "expense", "#F59E0B"},
	{"ค่าเช่า (Rent)", "expense", "#EF4444"},
	{"เงินเดือน (Salaries)", "expense", "#8B5CF6"},
	{"ค่าสาธารณูปโภค (Utilities)", "expense", "#EC4899"},
	{"ค่าขนส่ง (Transport)", "expense", "#F97316"},
	{"รายจ่ายอื่น (Other expense)", "expense", "#6B7280"},
}

// defaultSettings are written on first migration and on reset.
var defaultSettings = map[string]string{
	"first_run":               "true",
	"business_name":           "",
	"tax_id":                  "",
	"tax_type":                "personal",
	"accounting_period_start": "",
	"accounting_period_end":   "",
	"app_version":             "1.0.0",
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL DEFAULT '',
					updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					color TEXT NOT NULL DEFAULT '#888',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (name, type)
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					amount TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					transaction_date TEXT NOT NULL,
					vat_type TEXT NOT NULL DEFAULT 'none' CHECK (vat_type IN ('none', 'inclusive', 'exclusive')),
					vat_amount TEXT NOT NULL DEFAULT '0',
					total_with_vat TEXT NOT NULL,
					receipt_path TEXT,
					notes TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(transaction_date)`,
				`CREATE INDEX idx_transactions_type ON transactions(type)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Seed default settings and categories",
		Up: func(tx *sql.Tx) error {
			for key, value := range defaultSettings {
				if _, err := tx.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
					return fmt.Errorf("failed to seed setting %s: %w", key, err)
				}
			}
			for _, cat := range defaultCategories {
				if _, err := tx.Exec(`INSERT OR IGNORE INTO categories (name, type, color) VALUES (?, ?, ?)`,
					cat.name, cat.kind, cat.color); err != nil {
					return fmt.Errorf("failed to seed category %s: %w", cat.name, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Track transaction source for bank statement imports",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE transactions ADD COLUMN source TEXT NOT NULL DEFAULT 'manual'`,
				`ALTER TABLE transactions ADD COLUMN external_id TEXT`,
				`CREATE UNIQUE INDEX idx_transactions_external_id ON transactions(external_id) WHERE external_id IS NOT NULL`,
			})
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
