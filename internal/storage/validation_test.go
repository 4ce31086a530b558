package storage

import (
	"context"
	"testing"

	"github.com/nextax/nextax/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name: "valid context",
			ctx:  context.Background(),
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNilContext)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
		{name: "thai text", str: "ค่าเช่า"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyString)
				assert.Contains(t, err.Error(), "param")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validateID(1))
	assert.ErrorIs(t, validateID(0), ErrInvalidID)
	assert.ErrorIs(t, validateID(-3), ErrInvalidID)
}

func TestValidateTransactions(t *testing.T) {
	valid := model.Transaction{
		Type:    model.TypeIncome,
		Amount:  decimal.NewFromInt(100),
		Date:    mustDate(t, "2024-01-01"),
		VATType: model.VATNone,
	}
	zeroAmount := valid
	zeroAmount.Amount = decimal.Zero

	tests := []struct {
		wantErr      error
		name         string
		transactions []model.Transaction
	}{
		{name: "valid", transactions: []model.Transaction{valid}},
		{name: "nil slice", transactions: nil, wantErr: ErrNilParameter},
		{name: "empty slice", transactions: []model.Transaction{}, wantErr: ErrEmptySlice},
		{name: "zero amount", transactions: []model.Transaction{valid, zeroAmount}, wantErr: ErrInvalidTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransactions(tt.transactions)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, validateCategory(model.Category{Name: "Rent", Type: model.TypeExpense, Color: "#EF4444"}))
	assert.ErrorIs(t, validateCategory(model.Category{Name: "", Type: model.TypeExpense}), ErrInvalidCategory)
	assert.ErrorIs(t, validateCategory(model.Category{Name: "Rent", Type: "other"}), ErrInvalidCategory)
	assert.ErrorIs(t, validateCategory(model.Category{Name: "Rent", Type: model.TypeIncome, Color: "red"}), ErrInvalidCategory)
}
