// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/report"
	"github.com/nextax/nextax/internal/tax"
	"github.com/shopspring/decimal"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "no filter".
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *int
	Type       model.TransactionType
	Search     string // matched against description and notes
	Limit      int
}

// Summary holds income and expense totals for a date range.
type Summary struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	Net              decimal.Decimal
	TransactionCount int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Settings operations
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	GetBusinessProfile(ctx context.Context) (*model.BusinessProfile, error)
	SaveBusinessProfile(ctx context.Context, profile model.BusinessProfile) error
	ResetSettings(ctx context.Context) error
	GetTaxRegime(ctx context.Context) (tax.Regime, error)
	IsFirstRun(ctx context.Context) (bool, error)

	// Category operations
	GetCategories(ctx context.Context, categoryType model.TransactionType) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.TransactionType, color string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int) error

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) (receipt string, err error)
	SetTransactionReceipt(ctx context.Context, id int64, receipt string) (previous string, err error)
	SaveImportedTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetSummary(ctx context.Context, start, end time.Time) (*Summary, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReceiptStore keeps receipt files outside the database.
type ReceiptStore interface {
	Save(sourcePath string) (string, error)
	Path(name string) (string, error)
	Delete(name string) bool
	Exists(name string) bool
}

// ReportWriter publishes an annual report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, rpt *report.Report) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
