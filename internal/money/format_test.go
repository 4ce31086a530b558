package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGroup(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{"zero", decimal.Zero, "0"},
		{"thousands", decimal.NewFromInt(150000), "150,000"},
		{"millions", decimal.NewFromInt(5000000), "5,000,000"},
		{"fraction", decimal.RequireFromString("1234.5"), "1,234.5"},
		{"rounds to whole", decimal.RequireFromString("999.999"), "1,000"},
		{"negative", decimal.RequireFromString("-1500.25"), "-1,500.25"},
		{"beyond int64", decimal.RequireFromString("100000000000000000000"), "100,000,000,000,000,000,000"},
		{"beyond float64 precision", decimal.RequireFromString("12345678901234567.89"), "12,345,678,901,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Group(tt.amount, 2))
		})
	}
}

func TestFormatTHB(t *testing.T) {
	assert.Equal(t, "฿0.00", FormatTHB(decimal.Zero))
	assert.Equal(t, "฿27,500.00", FormatTHB(decimal.NewFromInt(27500)))
	assert.Equal(t, "฿1,234.57", FormatTHB(decimal.RequireFromString("1234.567")))
	assert.Equal(t, "฿-500.50", FormatTHB(decimal.RequireFromString("-500.5")))
	assert.Equal(t, "฿12,345,678,901,234,567.89", FormatTHB(decimal.RequireFromString("12345678901234567.89")))
	assert.Equal(t, "฿100,000,000,000,000,000,000.00", FormatTHB(decimal.RequireFromString("1e20")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0%", Percent(decimal.Zero))
	assert.Equal(t, "5%", Percent(decimal.RequireFromString("0.05")))
	assert.Equal(t, "35%", Percent(decimal.RequireFromString("0.35")))
	assert.Equal(t, "7.5%", Percent(decimal.RequireFromString("0.075")))
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, NonNegative(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}
