package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nextax/nextax/internal/model"
	"github.com/samber/lo"
)

// Backup errors.
var (
	ErrBackupNotFound    = errors.New("backup not found")
	ErrBackupExists      = errors.New("backup already exists")
	ErrBackupCorrupted   = errors.New("backup failed its integrity check")
	ErrBackupNewerSchema = errors.New("backup was written by a newer nextax")
	ErrInvalidBackupID   = errors.New("invalid backup id: cannot contain path separators")
)

// maxAutoBackups is how many automatic backups are kept.
const maxAutoBackups = 5

// BackupInfo describes one snapshot of the ledger. It is stored as JSON
// beside the snapshot file.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description,omitempty"`
	BusinessName  string    `json:"business_name,omitempty"`
	TaxType       string    `json:"tax_type,omitempty"`
	FirstDate     string    `json:"first_date,omitempty"`
	LastDate      string    `json:"last_date,omitempty"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	Categories    int       `json:"categories"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// Span returns the ledger's date range, e.g. "2025-01-03 to 2025-12-30",
// or an empty string when the snapshot holds no transactions.
func (b BackupInfo) Span() string {
	if b.FirstDate == "" {
		return ""
	}
	return b.FirstDate + " to " + b.LastDate
}

// BackupManager keeps snapshots of the ledger in a "backups" directory
// beside the database.
type BackupManager struct {
	db     *sql.DB
	dbPath string
	dir    string
}

// NewBackupManager creates the backups directory if needed.
func NewBackupManager(db *sql.DB, dbPath string) (*BackupManager, error) {
	dir, err := filepath.Abs(filepath.Join(filepath.Dir(dbPath), "backups"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backups directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	return &BackupManager{db: db, dbPath: dbPath, dir: dir}, nil
}

// Dir returns the directory holding backups.
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// Create snapshots the ledger. An empty tag is replaced by a timestamp.
func (bm *BackupManager) Create(ctx context.Context, tag, description string) (*BackupInfo, error) {
	if tag == "" {
		tag = "backup-" + time.Now().Format("2006-01-02-150405")
	}
	return bm.snapshot(ctx, tag, description, false)
}

// AutoBackup snapshots the ledger before a destructive operation such as an
// import or a settings reset, keeping only the newest automatic backups.
func (bm *BackupManager) AutoBackup(ctx context.Context, operation string) (*BackupInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s-%s", operation, time.Now().Format("2006-01-02-150405"), uuid.NewString()[:8])
	info, err := bm.snapshot(ctx, tag, "Automatic backup before "+operation, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic backup: %w", err)
	}

	if err := bm.prune(ctx); err != nil {
		slog.Warn("Failed to prune automatic backups", "error", err)
	}
	return info, nil
}

func (bm *BackupManager) snapshot(ctx context.Context, id, description string, isAuto bool) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBackupID(id); err != nil {
		return nil, err
	}

	path := bm.dbFile(id)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrBackupExists)
	}

	info, err := bm.describe(ctx)
	if err != nil {
		return nil, err
	}
	info.ID = id
	info.Description = description
	info.IsAuto = isAuto
	info.CreatedAt = time.Now()

	// VACUUM INTO writes a compact, consistent copy even while WAL is active.
	if _, err := bm.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeInfo(bm.infoFile(id), info); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to save backup details: %w", err)
	}

	slog.Info("Created backup", "id", id, "transactions", info.Transactions, "auto", isAuto)
	return info, nil
}

// describe summarizes the live ledger for the backup listing.
func (bm *BackupManager) describe(ctx context.Context) (*BackupInfo, error) {
	info := &BackupInfo{}

	if err := bm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	err := bm.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM categories),
			COALESCE((SELECT MIN(transaction_date) FROM transactions), ''),
			COALESCE((SELECT MAX(transaction_date) FROM transactions), ''),
			COALESCE((SELECT value FROM settings WHERE key = ?), ''),
			COALESCE((SELECT value FROM settings WHERE key = ?), '')`,
		model.SettingBusinessName, model.SettingTaxType,
	).Scan(&info.Transactions, &info.Categories, &info.FirstDate, &info.LastDate, &info.BusinessName, &info.TaxType)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ledger: %w", err)
	}
	return info, nil
}

// List returns all backups, newest first.
func (bm *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	files, err := filepath.Glob(filepath.Join(bm.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(files))
	for _, file := range files {
		info, err := readInfo(file)
		if err != nil {
			slog.Debug("Skipping unreadable backup details", "file", filepath.Base(file), "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	slices.SortFunc(backups, func(a, b BackupInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return backups, nil
}

// Restore puts a backup in place of the database. It closes the connection
// owned by the storage, so the storage must be reopened afterwards.
func (bm *BackupManager) Restore(ctx context.Context, id string) error {
	info, err := bm.lookup(id)
	if err != nil {
		return err
	}
	if info.SchemaVersion > ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema %d, this build understands %d", ErrBackupNewerSchema, info.SchemaVersion, ExpectedSchemaVersion)
	}
	if err := quickCheck(ctx, bm.dbFile(id)); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCorrupted, err)
	}

	if err := bm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(bm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Debug("Failed to remove sqlite side file", "suffix", suffix, "error", err)
		}
	}

	// The current ledger is moved aside until the copy has landed.
	aside := bm.dbPath + ".pre-restore"
	if err := os.Rename(bm.dbPath, aside); err != nil {
		return fmt.Errorf("failed to move current database aside: %w", err)
	}
	if err := copyFile(bm.dbFile(id), bm.dbPath); err != nil {
		if undoErr := os.Rename(aside, bm.dbPath); undoErr != nil {
			slog.Error("Failed to put the current database back", "path", aside, "error", undoErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	if err := os.Remove(aside); err != nil {
		slog.Warn("Failed to remove previous database", "path", aside, "error", err)
	}

	slog.Info("Restored backup", "id", id, "transactions", info.Transactions)
	return nil
}

// Delete removes a backup and its details.
func (bm *BackupManager) Delete(_ context.Context, id string) error {
	if _, err := bm.lookup(id); err != nil {
		return err
	}
	if err := os.Remove(bm.dbFile(id)); err != nil {
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(bm.infoFile(id)); err != nil {
		slog.Debug("Failed to remove backup details", "id", id, "error", err)
	}

	slog.Info("Deleted backup", "id", id)
	return nil
}

func (bm *BackupManager) prune(ctx context.Context) error {
	backups, err := bm.List(ctx)
	if err != nil {
		return err
	}

	autos := lo.Filter(backups, func(b BackupInfo, _ int) bool { return b.IsAuto })
	for _, old := range lo.Drop(autos, maxAutoBackups) {
		if err := bm.Delete(ctx, old.ID); err != nil {
			slog.Debug("Failed to delete old automatic backup", "id", old.ID, "error", err)
		}
	}
	return nil
}

// lookup loads the details of an existing backup.
func (bm *BackupManager) lookup(id string) (*BackupInfo, error) {
	if err := validateBackupID(id); err != nil {
		return nil, err
	}
	if _, err := os.Stat(bm.dbFile(id)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", id, ErrBackupNotFound)
		}
		return nil, fmt.Errorf("failed to access backup: %w", err)
	}
	info, err := readInfo(bm.infoFile(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup details: %w", err)
	}
	return info, nil
}

func (bm *BackupManager) dbFile(id string) string {
	return filepath.Join(bm.dir, id+".db")
}

func (bm *BackupManager) infoFile(id string) string {
	return filepath.Join(bm.dir, id+".json")
}

func validateBackupID(id string) error {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ErrInvalidBackupID
	}
	return validateString(id, "backup id")
}

func writeInfo(path string, info *BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func readInfo(path string) (*BackupInfo, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// quickCheck opens a snapshot read-only and runs SQLite's quick_check.
func quickCheck(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return errors.New(result)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
