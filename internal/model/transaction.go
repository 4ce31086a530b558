package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for transaction dates.
const DateLayout = "2006-01-02"

// TransactionType separates money in from money out.
type TransactionType string

const (
	// TypeIncome is money received.
	TypeIncome TransactionType = "income"
	// TypeExpense is money spent.
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseTransactionType parses "income" or "expense".
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid transaction type %q: must be income or expense", s)
	}
	return t, nil
}

// TransactionSource records where a transaction came from.
type TransactionSource string

const (
	// SourceManual is a transaction entered by hand.
	SourceManual TransactionSource = "manual"
	// SourceOFX is a transaction imported from a bank statement.
	SourceOFX TransactionSource = "ofx"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	Date          time.Time
	CreatedAt     time.Time
	CategoryID    *int
	Amount        decimal.Decimal // as entered, before VAT handling
	VATAmount     decimal.Decimal
	TotalWithVAT  decimal.Decimal
	Type          TransactionType
	VATType       VATType
	Source        TransactionSource
	CategoryName  string // joined from categories for display
	CategoryColor string
	Description   string
	ReceiptPath   string // receipt file name relative to the receipts directory
	Notes         string
	ExternalID    string // bank-assigned id for imported rows
	ID            int64
}

// ApplyVAT fills VATAmount and TotalWithVAT from Amount and VATType.
func (t *Transaction) ApplyVAT() {
	t.VATAmount, t.TotalWithVAT = ComputeVAT(t.Amount, t.VATType)
}

// BaseAmount is the VAT-exclusive amount used for reporting and tax.
func (t Transaction) BaseAmount() decimal.Decimal {
	return BaseAmount(t.Amount, t.VATType)
}

// Month returns the transaction month.
func (t Transaction) Month() time.Month {
	return t.Date.Month()
}

// Validate checks the fields required before saving.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("invalid type %q", t.Type)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", t.Amount)
	}
	if !t.VATType.Valid() {
		return fmt.Errorf("invalid VAT type %q", t.VATType)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}
