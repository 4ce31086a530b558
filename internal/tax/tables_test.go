package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInTables(t *testing.T) {
	pit := PersonalProgressive()
	require.NoError(t, pit.Validate())
	assert.Len(t, pit.Brackets, 8)
	assert.True(t, pit.Brackets[7].Rate.Equal(d("0.35")))

	sme := SMEStep()
	require.NoError(t, sme.Validate())
	assert.Len(t, sme.Brackets, 3)
}

func TestBuiltInTablesAreCopies(t *testing.T) {
	pit := PersonalProgressive()
	pit.Brackets[1].Rate = d("0.9")

	assert.True(t, PersonalProgressive().Brackets[1].Rate.Equal(d("0.05")))
	assert.True(t, CalculatePIT(d("500000")).TotalTax.Equal(d("27500")))
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		table   Table
		wantErr bool
	}{
		{
			name:  "valid",
			table: Table{Name: "ok", Brackets: []Bracket{bounded(0, 10, "0"), bounded(10, 20, "0.1"), open(20, "0.2")}},
		},
		{
			name:  "single unbounded",
			table: Table{Name: "flat", Brackets: []Bracket{open(0, "0.1")}},
		},
		{
			name:    "empty",
			table:   Table{Name: "empty"},
			wantErr: true,
			errMsg:  "has no brackets",
		},
		{
			name:    "first lower not zero",
			table:   Table{Name: "t", Brackets: []Bracket{bounded(5, 10, "0"), open(10, "0.1")}},
			wantErr: true,
			errMsg:  "first bracket starts at 5",
		},
		{
			name:    "gap",
			table:   Table{Name: "t", Brackets: []Bracket{bounded(0, 10, "0"), open(11, "0.1")}},
			wantErr: true,
			errMsg:  "gap or overlap",
		},
		{
			name:    "overlap",
			table:   Table{Name: "t", Brackets: []Bracket{bounded(0, 10, "0"), open(9, "0.1")}},
			wantErr: true,
			errMsg:  "gap or overlap",
		},
		{
			name:    "missing unbounded",
			table:   Table{Name: "t", Brackets: []Bracket{bounded(0, 10, "0"), bounded(10, 20, "0.1")}},
			wantErr: true,
			errMsg:  "last bracket must be unbounded",
		},
		{
			name:    "unbounded in the middle",
			table:   Table{Name: "t", Brackets: []Bracket{open(0, "0"), open(0, "0.1")}},
			wantErr: true,
			errMsg:  "unbounded but not last",
		},
		{
			name:    "empty bracket",
			table:   Table{Name: "t", Brackets: []Bracket{bounded(0, 0, "0"), open(0, "0.1")}},
			wantErr: true,
			errMsg:  "not above lower",
		},
		{
			name:    "rate of one",
			table:   Table{Name: "t", Brackets: []Bracket{open(0, "1")}},
			wantErr: true,
			errMsg:  "outside [0, 1)",
		},
		{
			name:    "negative rate",
			table:   Table{Name: "t", Brackets: []Bracket{open(0, "-0.1")}},
			wantErr: true,
			errMsg:  "outside [0, 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTable)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseRegime(t *testing.T) {
	tests := []struct {
		in      string
		want    Regime
		wantErr bool
	}{
		{in: "personal", want: RegimePersonal},
		{in: "PIT", want: RegimePersonal},
		{in: " sme ", want: RegimeSME},
		{in: "cit", want: RegimeSME},
		{in: "", wantErr: true},
		{in: "corporate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRegime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegime_Table(t *testing.T) {
	table, err := RegimeSME.Table()
	require.NoError(t, err)
	assert.Equal(t, "SME_STEP", table.Name)

	_, err = Regime("x").Table()
	assert.Error(t, err)
}
