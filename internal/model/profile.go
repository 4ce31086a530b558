package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nextax/nextax/internal/tax"
)

// Setting keys stored in the settings table.
const (
	SettingBusinessName          = "business_name"
	SettingTaxID                 = "tax_id"
	SettingTaxType               = "tax_type"
	SettingAccountingPeriodStart = "accounting_period_start"
	SettingAccountingPeriodEnd   = "accounting_period_end"
	SettingFirstRun              = "first_run"
	SettingAppVersion            = "app_version"
)

// TaxIDLength is the number of digits in a Thai taxpayer identification number.
const TaxIDLength = 13

// ErrInvalidProfile wraps every business profile validation failure.
var ErrInvalidProfile = errors.New("invalid business profile")

// BusinessProfile is the set of settings captured at setup.
type BusinessProfile struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	BusinessName string
	TaxID        string
	TaxType      tax.Regime
}

// CalendarYearPeriod returns Jan 1 to Dec 31 of year.
func CalendarYearPeriod(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// NormalizeTaxID strips everything but digits.
func NormalizeTaxID(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Validate returns all problems joined into one error.
func (p BusinessProfile) Validate() error {
	var problems []string

	if strings.TrimSpace(p.BusinessName) == "" {
		problems = append(problems, "business name is required")
	}
	if p.TaxID != "" && len(NormalizeTaxID(p.TaxID)) != TaxIDLength {
		problems = append(problems, fmt.Sprintf("tax ID must have %d digits", TaxIDLength))
	}
	if _, err := tax.ParseRegime(string(p.TaxType)); err != nil {
		problems = append(problems, fmt.Sprintf("tax type %q must be personal or sme", p.TaxType))
	}
	switch {
	case p.PeriodStart.IsZero():
		problems = append(problems, "accounting period start is required")
	case p.PeriodEnd.IsZero():
		problems = append(problems, "accounting period end is required")
	case !p.PeriodEnd.After(p.PeriodStart):
		problems = append(problems, "accounting period end must be after start")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}
