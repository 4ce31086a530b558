package model

import (
	"testing"
	"time"

	"github.com/nextax/nextax/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessProfile_Validate(t *testing.T) {
	start, end := CalendarYearPeriod(2024)
	valid := BusinessProfile{
		BusinessName: "ร้านกาแฟ",
		TaxID:        "1-2345-67890-12-3",
		TaxType:      tax.RegimeSME,
		PeriodStart:  start,
		PeriodEnd:    end,
	}

	tests := []struct {
		name    string
		mutate  func(*BusinessProfile)
		errMsg  string
		wantErr bool
	}{
		{name: "valid", mutate: func(*BusinessProfile) {}},
		{name: "no tax id is fine", mutate: func(p *BusinessProfile) { p.TaxID = "" }},
		{name: "blank name", mutate: func(p *BusinessProfile) { p.BusinessName = "  " }, wantErr: true, errMsg: "business name is required"},
		{name: "short tax id", mutate: func(p *BusinessProfile) { p.TaxID = "12345" }, wantErr: true, errMsg: "tax ID must have 13 digits"},
		{name: "unknown regime", mutate: func(p *BusinessProfile) { p.TaxType = "vat" }, wantErr: true, errMsg: "must be personal or sme"},
		{name: "missing start", mutate: func(p *BusinessProfile) { p.PeriodStart = time.Time{} }, wantErr: true, errMsg: "start is required"},
		{name: "end before start", mutate: func(p *BusinessProfile) { p.PeriodEnd = start }, wantErr: true, errMsg: "end must be after start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidProfile)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBusinessProfile_ValidateCollectsAllProblems(t *testing.T) {
	err := BusinessProfile{TaxID: "1", TaxType: tax.RegimePersonal}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business name is required")
	assert.Contains(t, err.Error(), "tax ID must have 13 digits")
	assert.Contains(t, err.Error(), "start is required")
}

func TestNormalizeTaxID(t *testing.T) {
	assert.Equal(t, "1234567890123", NormalizeTaxID("1-2345-67890-12-3"))
	assert.Equal(t, "", NormalizeTaxID("abc"))
}

func TestCategory_Validate(t *testing.T) {
	assert.NoError(t, Category{Name: "Rent", Type: TypeExpense, Color: "#EF4444"}.Validate())
	assert.NoError(t, Category{Name: "Rent", Type: TypeExpense}.Validate())
	assert.Error(t, Category{Name: "", Type: TypeExpense}.Validate())
	assert.Error(t, Category{Name: "Rent", Type: "asset"}.Validate())
	assert.Error(t, Category{Name: "Rent", Type: TypeIncome, Color: "red"}.Validate())
}
