package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// VATType says how VAT relates to an entered amount.
type VATType string

const (
	// VATNone means no VAT applies.
	VATNone VATType = "none"
	// VATInclusive means the entered amount already contains 7% VAT.
	VATInclusive VATType = "inclusive"
	// VATExclusive means 7% VAT is added on top of the entered amount.
	VATExclusive VATType = "exclusive"
)

var (
	// VATRate is the Thai standard VAT rate.
	VATRate = decimal.RequireFromString("0.07")

	hundred           = decimal.NewFromInt(100)
	hundredPlusVAT    = decimal.NewFromInt(107)
	vatDivisionPlaces = int32(10)
)

// Valid reports whether v is a known VAT type.
func (v VATType) Valid() bool {
	switch v {
	case VATNone, VATInclusive, VATExclusive:
		return true
	}
	return false
}

// ParseVATType parses a VAT type; an empty string means none.
func ParseVATType(s string) (VATType, error) {
	if s == "" {
		return VATNone, nil
	}
	v := VATType(s)
	if !v.Valid() {
		return "", fmt.Errorf("invalid VAT type %q: must be none, inclusive or exclusive", s)
	}
	return v, nil
}

// ComputeVAT returns the VAT portion and the VAT-inclusive total for amount.
func ComputeVAT(amount decimal.Decimal, vatType VATType) (vat, total decimal.Decimal) {
	switch vatType {
	case VATInclusive:
		base := BaseAmount(amount, vatType)
		return amount.Sub(base), amount
	case VATExclusive:
		vat = amount.Mul(VATRate)
		return vat, amount.Add(vat)
	default:
		return decimal.Zero, amount
	}
}

// BaseAmount strips VAT from inclusive amounts (amount * 100 / 107). Other
// amounts are returned unchanged.
func BaseAmount(amount decimal.Decimal, vatType VATType) decimal.Decimal {
	if vatType != VATInclusive {
		return amount
	}
	return amount.Mul(hundred).DivRound(hundredPlusVAT, vatDivisionPlaces)
}
