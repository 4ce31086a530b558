package tax

import (
	"fmt"
	"strings"
)

// Regime selects the bracket table. It is stored as the tax_type setting.
type Regime string

const (
	// RegimePersonal is personal income tax (PIT).
	RegimePersonal Regime = "personal"
	// RegimeSME is SME corporate income tax (CIT).
	RegimeSME Regime = "sme"
)

// DefaultRegime applies when no tax_type has been saved.
const DefaultRegime = RegimePersonal

// ParseRegime accepts "personal"/"pit" and "sme"/"cit" in any case.
func ParseRegime(s string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal", "pit":
		return RegimePersonal, nil
	case "sme", "cit":
		return RegimeSME, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRegime, s)
	}
}

// Label is the display name shown on reports.
func (r Regime) Label() string {
	switch r {
	case RegimePersonal:
		return "บุคคลธรรมดา (PIT)"
	case RegimeSME:
		return "นิติบุคคล SME (CIT)"
	default:
		return string(r)
	}
}

// Table returns the bracket table for the regime.
func (r Regime) Table() (Table, error) {
	switch r {
	case RegimePersonal:
		return PersonalProgressive(), nil
	case RegimeSME:
		return SMEStep(), nil
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownRegime, r)
	}
}
