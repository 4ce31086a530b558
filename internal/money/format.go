// Package money formats Thai baht amounts for display and export.
package money

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol is prefixed to formatted baht amounts.
const CurrencySymbol = "฿"

var printer = message.NewPrinter(language.English)

// Group formats an amount with thousands separators and at most maxFraction
// fractional digits, trimming trailing zeros. 1500000 becomes "1,500,000".
func Group(amount decimal.Decimal, maxFraction int) string {
	out := fixed(amount.Round(int32(maxFraction)), maxFraction)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

// Format renders an amount with two fixed decimals and thousands separators.
func Format(amount decimal.Decimal) string {
	return fixed(amount.Round(2), 2)
}

// fixed renders d with exactly places fractional digits. The digits come from
// the decimal itself, so amounts beyond int64 or float64 precision stay exact.
func fixed(d decimal.Decimal, places int) string {
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(int32(places)), ".")

	out := groupDigits(whole)
	if frac != "" {
		out += "." + frac
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// groupDigits inserts thousands separators into a string of digits.
func groupDigits(digits string) string {
	if n, ok := new(big.Int).SetString(digits, 10); ok && n.IsInt64() {
		return printer.Sprint(number.Decimal(n.Int64()))
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatTHB renders an amount as baht currency, e.g. "฿1,234.56". Negative
// amounts keep their sign after the symbol.
func FormatTHB(amount decimal.Decimal) string {
	return CurrencySymbol + Format(amount)
}

// Percent renders a fraction as a percentage without trailing zeros:
// 0.05 becomes "5%", 0.075 becomes "7.5%".
func Percent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).String() + "%"
}

// NonNegative clamps negative amounts to zero.
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
