// Package report builds the annual income, expense, VAT and tax report.
package report

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/tax"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Report errors.
var (
	ErrNothingToExport = errors.New("no transactions to export")
	ErrExportFailed    = errors.New("export failed")
)

// VATStatus says whether net VAT is owed or refundable.
type VATStatus string

const (
	// VATPayable means output VAT exceeds input VAT.
	VATPayable VATStatus = "payable"
	// VATRefundable means input VAT exceeds output VAT.
	VATRefundable VATStatus = "refundable"
	// VATZero means output and input VAT cancel out.
	VATZero VATStatus = "zero"
)

// ThaiLabel returns the status as shown on Thai reports.
func (s VATStatus) ThaiLabel() string {
	switch s {
	case VATPayable:
		return "ต้องชำระ"
	case VATRefundable:
		return "ขอคืน"
	default:
		return "-"
	}
}

// MonthlyRow holds one month's VAT-exclusive totals.
type MonthlyRow struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Profit  decimal.Decimal
	Month   time.Month
}

// CategoryRow is one line of the category breakdown.
type CategoryRow struct {
	Total   decimal.Decimal
	Percent decimal.Decimal // share of the type's total, 0-100
	Name    string
	Color   string
	Type    model.TransactionType
	Count   int
}

// VATSummary totals VAT collected and paid.
type VATSummary struct {
	Output decimal.Decimal
	Input  decimal.Decimal
	Net    decimal.Decimal
	Status VATStatus
}

// Report is the annual report for one tax year.
type Report struct {
	GeneratedAt   time.Time
	Tax           tax.Result
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	NetProfit     decimal.Decimal
	TaxableIncome decimal.Decimal
	VAT           VATSummary
	BusinessName  string
	Regime        tax.Regime
	Monthly       []MonthlyRow
	Categories    []CategoryRow
	Transactions  []model.Transaction
	Year          int
}

// BuddhistYear returns the report year in the Thai Buddhist era.
func (r *Report) BuddhistYear() int {
	return BuddhistYear(r.Year)
}

// EffectiveRate is total tax over taxable income, zero when nothing is taxable.
func (r *Report) EffectiveRate() decimal.Decimal {
	return r.Tax.EffectiveRate(r.TaxableIncome)
}

// Build computes the report for year from its transactions. Transactions
// outside the year are ignored. Amounts are VAT-exclusive bases.
func Build(year int, regime tax.Regime, transactions []model.Transaction) (*Report, error) {
	inYear := lo.Filter(transactions, func(t model.Transaction, _ int) bool {
		return t.Date.Year() == year
	})

	rpt := &Report{
		GeneratedAt:  time.Now(),
		Year:         year,
		Regime:       regime,
		Transactions: inYear,
		Monthly:      make([]MonthlyRow, 12),
	}
	for i := range rpt.Monthly {
		rpt.Monthly[i].Month = time.Month(i + 1)
	}

	for _, t := range inYear {
		base := t.BaseAmount()
		row := &rpt.Monthly[t.Month()-1]

		switch t.Type {
		case model.TypeIncome:
			rpt.TotalIncome = rpt.TotalIncome.Add(base)
			row.Income = row.Income.Add(base)
			if t.VATAmount.IsPositive() {
				rpt.VAT.Output = rpt.VAT.Output.Add(t.VATAmount)
			}
		case model.TypeExpense:
			rpt.TotalExpense = rpt.TotalExpense.Add(base)
			row.Expense = row.Expense.Add(base)
			if t.VATAmount.IsPositive() {
				rpt.VAT.Input = rpt.VAT.Input.Add(t.VATAmount)
			}
		}
	}

	for i := range rpt.Monthly {
		rpt.Monthly[i].Profit = rpt.Monthly[i].Income.Sub(rpt.Monthly[i].Expense)
	}

	rpt.NetProfit = rpt.TotalIncome.Sub(rpt.TotalExpense)
	rpt.VAT.Net = rpt.VAT.Output.Sub(rpt.VAT.Input)
	rpt.VAT.Status = vatStatus(rpt.VAT.Net)
	rpt.Categories = categoryBreakdown(inYear, rpt.TotalIncome, rpt.TotalExpense)

	rpt.TaxableIncome = decimal.Max(decimal.Zero, rpt.NetProfit)
	result, err := tax.ForRegime(regime, rpt.TaxableIncome)
	if err != nil {
		return nil, err
	}
	rpt.Tax = result

	return rpt, nil
}

func vatStatus(net decimal.Decimal) VATStatus {
	switch net.Sign() {
	case 1:
		return VATPayable
	case -1:
		return VATRefundable
	default:
		return VATZero
	}
}

type categoryKey struct {
	name    string
	txnType model.TransactionType
}

func categoryBreakdown(transactions []model.Transaction, totalIncome, totalExpense decimal.Decimal) []CategoryRow {
	groups := lo.GroupBy(transactions, func(t model.Transaction) categoryKey {
		return categoryKey{name: categoryName(t), txnType: t.Type}
	})

	rows := make([]CategoryRow, 0, len(groups))
	for key, txns := range groups {
		total := lo.Reduce(txns, func(sum decimal.Decimal, t model.Transaction, _ int) decimal.Decimal {
			return sum.Add(t.BaseAmount())
		}, decimal.Zero)

		typeTotal := lo.Ternary(key.txnType == model.TypeIncome, totalIncome, totalExpense)
		percent := decimal.Zero
		if typeTotal.IsPositive() {
			percent = total.Div(typeTotal).Mul(decimal.NewFromInt(100))
		}

		rows = append(rows, CategoryRow{
			Name:    key.name,
			Color:   categoryColor(txns[0]),
			Type:    key.txnType,
			Total:   total,
			Count:   len(txns),
			Percent: percent,
		})
	}

	slices.SortFunc(rows, func(a, b CategoryRow) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return rows
}

func categoryName(t model.Transaction) string {
	if t.CategoryName == "" {
		return model.UncategorizedName
	}
	return t.CategoryName
}

func categoryColor(t model.Transaction) string {
	if t.CategoryColor == "" {
		return model.DefaultCategoryColor
	}
	return t.CategoryColor
}
