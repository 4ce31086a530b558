package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one marginal band of a table. Lower is inclusive; Upper is the
// exclusive-from-above edge and is ignored when Unbounded is set.
type Bracket struct {
	Lower     decimal.Decimal
	Upper     decimal.Decimal
	Rate      decimal.Decimal
	Unbounded bool
}

// Table is an ordered set of contiguous brackets.
type Table struct {
	Name     string
	Brackets []Bracket
}

func bounded(lower, upper int64, rate string) Bracket {
	return Bracket{
		Lower: decimal.NewFromInt(lower),
		Upper: decimal.NewFromInt(upper),
		Rate:  decimal.RequireFromString(rate),
	}
}

func open(lower int64, rate string) Bracket {
	return Bracket{
		Lower:     decimal.NewFromInt(lower),
		Rate:      decimal.RequireFromString(rate),
		Unbounded: true,
	}
}

// Thai personal income tax brackets (2024).
var personalProgressive = Table{
	Name: "PERSONAL_PROGRESSIVE",
	Brackets: []Bracket{
		bounded(0, 150_000, "0"),
		bounded(150_000, 300_000, "0.05"),
		bounded(300_000, 500_000, "0.10"),
		bounded(500_000, 750_000, "0.15"),
		bounded(750_000, 1_000_000, "0.20"),
		bounded(1_000_000, 2_000_000, "0.25"),
		bounded(2_000_000, 5_000_000, "0.30"),
		open(5_000_000, "0.35"),
	},
}

// SME corporate income tax step rates. Applies to companies with paid-up
// capital up to 5M and revenue up to 30M.
var smeStep = Table{
	Name: "SME_STEP",
	Brackets: []Bracket{
		bounded(0, 300_000, "0"),
		bounded(300_000, 3_000_000, "0.15"),
		open(3_000_000, "0.20"),
	},
}

func init() {
	for _, t := range []Table{personalProgressive, smeStep} {
		if err := t.Validate(); err != nil {
			panic(fmt.Sprintf("built-in tax table: %v", err))
		}
	}
}

// PersonalProgressive returns a copy of the personal income tax table.
func PersonalProgressive() Table {
	return personalProgressive.clone()
}

// SMEStep returns a copy of the SME corporate income tax table.
func SMEStep() Table {
	return smeStep.clone()
}

func (t Table) clone() Table {
	brackets := make([]Bracket, len(t.Brackets))
	copy(brackets, t.Brackets)
	return Table{Name: t.Name, Brackets: brackets}
}

// Validate checks that brackets start at zero, are contiguous and ascending,
// carry rates in [0, 1), and that the last bracket, and only the last, is
// unbounded.
func (t Table) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: %s has no brackets", ErrInvalidTable, t.Name)
	}
	if !t.Brackets[0].Lower.IsZero() {
		return fmt.Errorf("%w: %s first bracket starts at %s, want 0", ErrInvalidTable, t.Name, t.Brackets[0].Lower)
	}

	one := decimal.NewFromInt(1)
	last := len(t.Brackets) - 1
	for i, b := range t.Brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThanOrEqual(one) {
			return fmt.Errorf("%w: %s bracket %d rate %s outside [0, 1)", ErrInvalidTable, t.Name, i, b.Rate)
		}
		if i == last {
			if !b.Unbounded {
				return fmt.Errorf("%w: %s last bracket must be unbounded", ErrInvalidTable, t.Name)
			}
			continue
		}
		if b.Unbounded {
			return fmt.Errorf("%w: %s bracket %d is unbounded but not last", ErrInvalidTable, t.Name, i)
		}
		if !b.Upper.GreaterThan(b.Lower) {
			return fmt.Errorf("%w: %s bracket %d upper %s not above lower %s", ErrInvalidTable, t.Name, i, b.Upper, b.Lower)
		}
		if next := t.Brackets[i+1]; !next.Lower.Equal(b.Upper) {
			return fmt.Errorf("%w: %s gap or overlap between bracket %d (upper %s) and %d (lower %s)",
				ErrInvalidTable, t.Name, i, b.Upper, i+1, next.Lower)
		}
	}
	return nil
}
