package util

import (
	"fmt"
	"strings"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ParseMoney parses a non-negative monetary amount with at most two decimal places,
// no larger than domain.MaxAmount. Exponent notation is rejected.
// Trailing fractional zeros do not count, so "10.990" is accepted as 10.99.
func ParseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", domain.ErrInvalidAmount)
	}

	if strings.ContainsAny(raw, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q is not a plain number", domain.ErrInvalidAmount, raw)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", domain.ErrInvalidAmount, raw)
	}
	if amount.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %s", domain.ErrInvalidAmount, raw, domain.MaxAmount.StringFixed(domain.MaxDecimalPlaces))
	}
	if !HasValidScale(amount) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d decimal places", domain.ErrInvalidAmount, raw, domain.MaxDecimalPlaces)
	}

	return amount.Truncate(domain.MaxDecimalPlaces), nil
}

// HasValidScale reports whether amount has no more than two significant decimal places
func HasValidScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(domain.MaxDecimalPlaces))
}

// FormatMoney renders an amount the way the ledger prints it, e.g. "$10.50"
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(domain.MaxDecimalPlaces)
}
