package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/ledger/internal/domain"
)

const periodLayoutLength = len("MM-YYYY")

// ParsePeriod parses an MM-YYYY string into a period no later than the current year
func ParsePeriod(raw string) (domain.Period, error) {
	return ParsePeriodAt(raw, time.Now())
}

// ParsePeriodAt is ParsePeriod with an explicit clock.
// Checks run in order: length, dash, field lengths, digits, ranges.
func ParsePeriodAt(raw string, now time.Time) (domain.Period, error) {
	raw = strings.TrimSpace(raw)

	if len(raw) != periodLayoutLength {
		return domain.Period{}, fmt.Errorf("%w: expected MM-YYYY", domain.ErrInvalidPeriod)
	}
	if strings.Count(raw, "-") != 1 {
		return domain.Period{}, fmt.Errorf("%w: expected a single '-' separator", domain.ErrInvalidPeriod)
	}

	monthField, yearField, _ := strings.Cut(raw, "-")
	if len(monthField) != 2 || len(yearField) != 4 {
		return domain.Period{}, fmt.Errorf("%w: month must have 2 digits and year 4 digits", domain.ErrInvalidPeriod)
	}
	if !isDigits(monthField) || !isDigits(yearField) {
		return domain.Period{}, fmt.Errorf("%w: month and year must be numeric", domain.ErrInvalidPeriod)
	}

	month, _ := strconv.Atoi(monthField)
	year, _ := strconv.Atoi(yearField)
	if month < 1 || month > 12 {
		return domain.Period{}, fmt.Errorf("%w: month must be between 01 and 12", domain.ErrInvalidPeriod)
	}
	if year < 1 {
		return domain.Period{}, fmt.Errorf("%w: year must be 0001 or later", domain.ErrInvalidPeriod)
	}
	if year > now.Year() {
		return domain.Period{}, fmt.Errorf("%w: year must not be after %d", domain.ErrInvalidPeriod, now.Year())
	}

	return domain.Period{Year: year, Month: month}, nil
}

// CurrentPeriod returns the period containing now
func CurrentPeriod(now time.Time) domain.Period {
	return domain.Period{Year: now.Year(), Month: int(now.Month())}
}

// PreviousPeriod returns the period before p
func PreviousPeriod(p domain.Period) domain.Period {
	if p.Month == 1 {
		return domain.Period{Year: p.Year - 1, Month: 12}
	}
	return domain.Period{Year: p.Year, Month: p.Month - 1}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
