package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nextax/nextax/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStorage returns a migrated storage backed by a temp file.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTxn(t *testing.T, txnType model.TransactionType, amount, date string) *model.Transaction {
	t.Helper()
	return &model.Transaction{
		Type:   txnType,
		Amount: decimal.RequireFromString(amount),
		Date:   mustDate(t, date),
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "nextax.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	categories, err := store.GetCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, categories, len(defaultCategories))

	firstRun, err := store.IsFirstRun(ctx)
	require.NoError(t, err)
	assert.True(t, firstRun)
}

func TestMigrate_NilContext(t *testing.T) {
	store := createTestStorage(t)
	//nolint:staticcheck // testing nil context handling
	assert.ErrorIs(t, store.Migrate(nil), ErrNilContext)
}
