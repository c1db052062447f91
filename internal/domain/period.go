package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is a (month, year) pair scoping a set of incomes, expenses and categories
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// String renders the period as MM-YYYY
func (p Period) String() string {
	return fmt.Sprintf("%02d-%04d", p.Month, p.Year)
}

// PartitionKey renders the period as YYYY-MM, which sorts chronologically
func (p Period) PartitionKey() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Collection names a logical table within a period
type Collection string

const (
	CollectionIncome     Collection = "income"
	CollectionExpense    Collection = "expense"
	CollectionCategories Collection = "categories"
)

// Collections lists every collection a period owns
var Collections = []Collection{CollectionIncome, CollectionExpense, CollectionCategories}

// Valid reports whether c is a known collection
func (c Collection) Valid() bool {
	switch c {
	case CollectionIncome, CollectionExpense, CollectionCategories:
		return true
	}
	return false
}

// Scope identifies which collection of which period a record belongs to
type Scope struct {
	Period     Period
	Collection Collection
}

// NewScope builds a scope for the given period and collection
func NewScope(period Period, collection Collection) Scope {
	return Scope{Period: period, Collection: collection}
}

// Path returns the store path year/month/collection
func (s Scope) Path() string {
	return fmt.Sprintf("%04d/%02d/%s", s.Period.Year, s.Period.Month, s.Collection)
}

// ParseScopePath is the inverse of Scope.Path
func ParseScopePath(path string) (Scope, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 {
		return Scope{}, fmt.Errorf("%w: scope path %q", ErrInvalidInput, path)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Scope{}, fmt.Errorf("%w: scope path %q", ErrInvalidInput, path)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Scope{}, fmt.Errorf("%w: scope path %q", ErrInvalidInput, path)
	}
	collection := Collection(parts[2])
	if !collection.Valid() {
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidCollection, parts[2])
	}
	return Scope{Period: Period{Year: year, Month: month}, Collection: collection}, nil
}
