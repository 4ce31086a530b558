// Package testutil provides shared fixtures for tests that need a migrated
// database or ready-made transactions.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/storage"
)

// Default category IDs seeded by the initial migration.
const (
	CategorySales        = 1
	CategoryServices     = 2
	CategoryOtherIncome  = 3
	CategoryMaterials    = 4
	CategoryRent         = 5
	CategorySalaries     = 6
	CategoryUtilities    = 7
	CategoryTransport    = 8
	CategoryOtherExpense = 9
)

// TestDB is a migrated database living in the test's temp directory.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated database that is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.MustCreate(testutil.Income("1500").On("2025-01-10").Build(t))
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "nextax.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &TestDB{Storage: store, t: t}
}

// MustCreate stores each transaction and returns their IDs in order.
func (db *TestDB) MustCreate(transactions ...model.Transaction) []int64 {
	db.t.Helper()

	ids := make([]int64, 0, len(transactions))
	for i := range transactions {
		id, err := db.Storage.CreateTransaction(context.Background(), &transactions[i])
		if err != nil {
			db.t.Fatalf("failed to create transaction %q: %v", transactions[i].Description, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// MustSaveProfile stores the business profile or fails the test.
func (db *TestDB) MustSaveProfile(profile model.BusinessProfile) {
	db.t.Helper()
	if err := db.Storage.SaveBusinessProfile(context.Background(), profile); err != nil {
		db.t.Fatalf("failed to save profile: %v", err)
	}
}

// MustGetCategory returns a category by ID or fails the test.
func (db *TestDB) MustGetCategory(id int) model.Category {
	db.t.Helper()
	cat, err := db.Storage.GetCategoryByID(context.Background(), id)
	if err != nil {
		db.t.Fatalf("category %d not found: %v", id, err)
	}
	return *cat
}
