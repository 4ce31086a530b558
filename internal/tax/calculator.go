// Package tax computes Thai income tax from progressive bracket tables.
//
// Two regimes are supported: personal income tax (eight progressive brackets)
// and SME corporate income tax (three step-rate brackets). Both use the same
// marginal calculation; only the table differs. All functions are pure and
// safe for concurrent use.
package tax

import (
	"errors"
	"fmt"

	"github.com/nextax/nextax/internal/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTable indicates a bracket table that is empty, has gaps or
	// overlaps, or lacks a single trailing unbounded bracket.
	ErrInvalidTable = errors.New("invalid tax table")
	// ErrUnknownRegime indicates a tax_type value other than personal or sme.
	ErrUnknownRegime = errors.New("unknown tax regime")
)

// UnboundedLabel marks the open top edge in range labels.
const UnboundedLabel = "MAX"

// BracketDetail is the share of an amount that fell into one bracket.
type BracketDetail struct {
	RangeLabel    string
	RateLabel     string
	TaxableAmount decimal.Decimal
	TaxInBracket  decimal.Decimal
	Rate          decimal.Decimal
}

// Result is the outcome of a calculation. Details are in ascending bracket
// order and include zero-rate brackets the amount reached.
type Result struct {
	TotalTax decimal.Decimal
	Details  []BracketDetail
}

// CalculateProgressiveTax applies table to amount marginally. A zero or
// negative amount yields an empty result.
func CalculateProgressiveTax(amount decimal.Decimal, table Table) (Result, error) {
	if err := table.Validate(); err != nil {
		return Result{}, err
	}
	return calculate(amount, table), nil
}

// CalculatePIT computes personal income tax on net taxable income.
func CalculatePIT(netIncome decimal.Decimal) Result {
	return calculate(netIncome, personalProgressive)
}

// CalculateSMETax computes SME corporate income tax on net profit.
func CalculateSMETax(netProfit decimal.Decimal) Result {
	return calculate(netProfit, smeStep)
}

// ForRegime dispatches to the calculator selected by the tax_type setting.
func ForRegime(regime Regime, amount decimal.Decimal) (Result, error) {
	switch regime {
	case RegimePersonal:
		return CalculatePIT(amount), nil
	case RegimeSME:
		return CalculateSMETax(amount), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownRegime, regime)
	}
}

// calculate assumes table is valid.
func calculate(amount decimal.Decimal, table Table) Result {
	total := decimal.Zero
	details := make([]BracketDetail, 0, len(table.Brackets))

	for _, b := range table.Brackets {
		if amount.LessThanOrEqual(b.Lower) {
			break
		}

		top := amount
		if !b.Unbounded {
			top = decimal.Min(amount, b.Upper)
		}
		taxable := top.Sub(b.Lower)
		taxed := taxable.Mul(b.Rate)

		total = total.Add(taxed)
		details = append(details, BracketDetail{
			RangeLabel:    RangeLabel(b),
			RateLabel:     money.Percent(b.Rate),
			TaxableAmount: taxable,
			TaxInBracket:  taxed,
			Rate:          b.Rate,
		})

		if !b.Unbounded && amount.LessThanOrEqual(b.Upper) {
			break
		}
	}

	return Result{TotalTax: total, Details: details}
}

// RangeLabel renders a bracket's bounds, e.g. "150,000 - 300,000" or
// "5,000,000 - MAX".
func RangeLabel(b Bracket) string {
	upper := UnboundedLabel
	if !b.Unbounded {
		upper = money.Group(b.Upper, 2)
	}
	return money.Group(b.Lower, 2) + " - " + upper
}

// EffectiveRate is total tax divided by amount, zero for non-positive amounts.
func (r Result) EffectiveRate(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return r.TotalTax.Div(amount)
}

// MarginalRate is the rate of the highest bracket reached, zero when no
// bracket was reached.
func (r Result) MarginalRate() decimal.Decimal {
	if len(r.Details) == 0 {
		return decimal.Zero
	}
	return r.Details[len(r.Details)-1].Rate
}
