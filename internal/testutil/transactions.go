package testutil

import (
	"testing"

	"github.com/nextax/nextax/internal/model"
	"github.com/shopspring/decimal"
)

// TxnBuilder assembles a transaction for tests with a fluent API.
type TxnBuilder struct {
	txn  model.Transaction
	date string
}

// Income starts an income transaction for amount baht.
func Income(amount string) *TxnBuilder {
	return newTxn(model.TypeIncome, amount)
}

// Expense starts an expense transaction for amount baht.
func Expense(amount string) *TxnBuilder {
	return newTxn(model.TypeExpense, amount)
}

func newTxn(txnType model.TransactionType, amount string) *TxnBuilder {
	return &TxnBuilder{
		txn: model.Transaction{
			Type:    txnType,
			Amount:  decimal.RequireFromString(amount),
			VATType: model.VATNone,
			Source:  model.SourceManual,
		},
		date: "2025-01-01",
	}
}

// On sets the date as YYYY-MM-DD.
func (b *TxnBuilder) On(date string) *TxnBuilder {
	b.date = date
	return b
}

// VAT sets how VAT applies to the amount.
func (b *TxnBuilder) VAT(v model.VATType) *TxnBuilder {
	b.txn.VATType = v
	return b
}

// Described sets the description.
func (b *TxnBuilder) Described(description string) *TxnBuilder {
	b.txn.Description = description
	return b
}

// InCategory links the transaction to a stored category ID.
func (b *TxnBuilder) InCategory(id int) *TxnBuilder {
	b.txn.CategoryID = &id
	return b
}

// Named sets the joined category name and color without a stored category.
func (b *TxnBuilder) Named(category, color string) *TxnBuilder {
	b.txn.CategoryName = category
	b.txn.CategoryColor = color
	return b
}

// Build parses the date and computes VAT.
func (b *TxnBuilder) Build(t *testing.T) model.Transaction {
	t.Helper()

	d, err := model.ParseDate(b.date)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", b.date, err)
	}
	txn := b.txn
	txn.Date = d
	txn.ApplyVAT()
	return txn
}
