package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Record is the stored form shared by every collection.
// Label holds the income/expense source or the category name, Amount holds the
// value or the budget.
type Record struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryKey string          `json:"categoryKey,omitempty"`
}

// RecordStore is the gateway to the document store holding every period's records
type RecordStore interface {
	Add(ctx context.Context, scope Scope, rec Record) (string, error)
	Update(ctx context.Context, scope Scope, key string, rec Record) error
	// Delete is a no-op when key does not exist
	Delete(ctx context.Context, scope Scope, key string) error
	DeleteAll(ctx context.Context, scope Scope) error
	List(ctx context.Context, scope Scope) ([]Record, error)
	// LoadPeriod lists every collection of period
	LoadPeriod(ctx context.Context, period Period) (*PeriodRecords, error)
	// Subscribe delivers the current records of scope immediately and again after
	// every change. The returned func cancels the subscription.
	Subscribe(ctx context.Context, scope Scope, fn func([]Record)) (func(), error)
}

// PeriodRecords holds every collection of one period
type PeriodRecords struct {
	Incomes    []Record
	Expenses   []Record
	Categories []Record
}
