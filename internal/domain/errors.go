package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternalError     = errors.New("internal error")
	ErrRecordNotFound    = errors.New("record not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrNameRequired      = errors.New("name is required")
	ErrNameTooLong       = errors.New("name exceeds maximum length")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrInvalidCollection = errors.New("invalid collection")
	ErrExportDisabled    = errors.New("export is not configured")
)

// Validation constants
const (
	MaxNameLength    = 100
	MaxDecimalPlaces = 2
)

// MaxAmount is the largest amount every backend stores exactly (NUMERIC(14,2))
var MaxAmount = decimal.RequireFromString("999999999999.99")
