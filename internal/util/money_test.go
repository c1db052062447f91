package util

import (
	"testing"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney_Valid(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"10.99", "10.99"},
		{"0", "0.00"},
		{"  42  ", "42.00"},
		{"10.990", "10.99"},
		{"1500", "1500.00"},
		{"0.01", "0.01"},
		{"999999999999.99", "999999999999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			amount, err := ParseMoney(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount.StringFixed(2))
		})
	}
}

func TestParseMoney_ReturnsExactValue(t *testing.T) {
	amount, err := ParseMoney("10.99")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("10.99")))
}

func TestParseMoney_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"too many decimals", "10.999"},
		{"negative", "-5.00"},
		{"not a number", "ten"},
		{"empty", ""},
		{"whitespace", "   "},
		{"three significant decimals", "0.001"},
		{"exponent", "1e3"},
		{"huge exponent", "1e999999"},
		{"upper case exponent", "5E2"},
		{"above maximum", "1000000000000"},
		{"just above maximum", "999999999999.991"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMoney(tt.raw)
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		})
	}
}

func TestHasValidScale(t *testing.T) {
	assert.True(t, HasValidScale(decimal.RequireFromString("1.20")))
	assert.True(t, HasValidScale(decimal.NewFromInt(7)))
	assert.False(t, HasValidScale(decimal.RequireFromString("1.205")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$10.50", FormatMoney(decimal.RequireFromString("10.5")))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "$-3.25", FormatMoney(decimal.RequireFromString("-3.25")))
}
