package main

import (
	"context"
	"testing"
	"time"

	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/tax"
	"github.com/nextax/nextax/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestBuildReport_UsesSavedProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	start, end := model.CalendarYearPeriod(2025)
	db.MustSaveProfile(model.BusinessProfile{
		BusinessName: "บริษัท ทดสอบ",
		TaxType:      tax.RegimeSME,
		PeriodStart:  start,
		PeriodEnd:    end,
	})
	db.MustCreate(
		testutil.Income("4000000").On("2025-02-01").InCategory(testutil.CategorySales).Build(t),
		testutil.Expense("500000").On("2025-02-15").InCategory(testutil.CategoryRent).Build(t),
		testutil.Income("1").On("2024-12-31").Build(t),
	)

	rpt, err := buildReport(contextCmd(), db.Storage, 2025)
	require.NoError(t, err)

	assert.Equal(t, "บริษัท ทดสอบ", rpt.BusinessName)
	assert.Equal(t, tax.RegimeSME, rpt.Regime)
	assert.Len(t, rpt.Transactions, 2)
	assert.True(t, decimal.NewFromInt(3500000).Equal(rpt.TaxableIncome))
	// 2,700,000 at 15% plus 500,000 at 20%
	assert.True(t, decimal.NewFromInt(505000).Equal(rpt.Tax.TotalTax), rpt.Tax.TotalTax.String())

	rent := db.MustGetCategory(testutil.CategoryRent)
	names := make([]string, 0, len(rpt.Categories))
	for _, row := range rpt.Categories {
		names = append(names, row.Name)
	}
	assert.Contains(t, names, rent.Name)
}

func TestSummaryRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cmd := contextCmd()

	start, end, err := summaryRange(cmd, db.Storage, "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Year(), start.Year())
	assert.Equal(t, time.January, start.Month())
	assert.Equal(t, time.December, end.Month())

	db.MustSaveProfile(model.BusinessProfile{
		BusinessName: "ร้าน",
		TaxType:      tax.RegimePersonal,
		PeriodStart:  time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
	})

	start, end, err = summaryRange(cmd, db.Storage, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", start.Format(model.DateLayout))
	assert.Equal(t, "2025-03-31", end.Format(model.DateLayout))

	start, _, err = summaryRange(cmd, db.Storage, "2024-06-01", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", start.Format(model.DateLayout))

	_, _, err = summaryRange(cmd, db.Storage, "", "31/12/2024")
	assert.Error(t, err)
}
