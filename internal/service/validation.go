package service

import (
	"strings"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/util"
	"github.com/shopspring/decimal"
)

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.GreaterThan(domain.MaxAmount) || !util.HasValidScale(amount) {
		return domain.ErrInvalidAmount
	}
	return nil
}
