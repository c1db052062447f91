package testutil

import (
	"context"
	"sync"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/store"
	"github.com/dafibh/ledger/internal/store/memory"
)

// MockRecordStore is a domain.RecordStore backed by an in-memory gateway.
// Setting one of the Fn fields replaces the matching operation.
type MockRecordStore struct {
	*store.Gateway

	AddFn       func(ctx context.Context, scope domain.Scope, rec domain.Record) (string, error)
	UpdateFn    func(ctx context.Context, scope domain.Scope, key string, rec domain.Record) error
	DeleteFn    func(ctx context.Context, scope domain.Scope, key string) error
	DeleteAllFn func(ctx context.Context, scope domain.Scope) error
	ListFn      func(ctx context.Context, scope domain.Scope) ([]domain.Record, error)
	LoadFn      func(ctx context.Context, period domain.Period) (*domain.PeriodRecords, error)

	mu    sync.Mutex
	calls []string
}

// NewMockRecordStore creates a new MockRecordStore
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{Gateway: store.NewGateway(memory.New())}
}

func (m *MockRecordStore) record(op string, scope domain.Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op+" "+scope.Path())
}

// Calls returns the operations performed so far, e.g. "delete_all 2024/03/income"
func (m *MockRecordStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Add stores a record
func (m *MockRecordStore) Add(ctx context.Context, scope domain.Scope, rec domain.Record) (string, error) {
	m.record("add", scope)
	if m.AddFn != nil {
		return m.AddFn(ctx, scope, rec)
	}
	return m.Gateway.Add(ctx, scope, rec)
}

// Update replaces a record
func (m *MockRecordStore) Update(ctx context.Context, scope domain.Scope, key string, rec domain.Record) error {
	m.record("update", scope)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, scope, key, rec)
	}
	return m.Gateway.Update(ctx, scope, key, rec)
}

// Delete removes a record
func (m *MockRecordStore) Delete(ctx context.Context, scope domain.Scope, key string) error {
	m.record("delete", scope)
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, scope, key)
	}
	return m.Gateway.Delete(ctx, scope, key)
}

// DeleteAll removes every record of scope
func (m *MockRecordStore) DeleteAll(ctx context.Context, scope domain.Scope) error {
	m.record("delete_all", scope)
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx, scope)
	}
	return m.Gateway.DeleteAll(ctx, scope)
}

// List returns the records of scope
func (m *MockRecordStore) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, scope)
	}
	return m.Gateway.List(ctx, scope)
}

// LoadPeriod returns every collection of period. With ListFn set the
// collections are read one by one through it.
func (m *MockRecordStore) LoadPeriod(ctx context.Context, period domain.Period) (*domain.PeriodRecords, error) {
	if m.LoadFn != nil {
		return m.LoadFn(ctx, period)
	}
	if m.ListFn == nil {
		return m.Gateway.LoadPeriod(ctx, period)
	}

	result := &domain.PeriodRecords{}
	targets := []struct {
		collection domain.Collection
		dst        *[]domain.Record
	}{
		{domain.CollectionIncome, &result.Incomes},
		{domain.CollectionExpense, &result.Expenses},
		{domain.CollectionCategories, &result.Categories},
	}
	for _, target := range targets {
		records, err := m.ListFn(ctx, domain.NewScope(period, target.collection))
		if err != nil {
			return nil, err
		}
		*target.dst = records
	}
	return result, nil
}

// AddRecord stores rec directly, bypassing AddFn (helper for tests)
func (m *MockRecordStore) AddRecord(scope domain.Scope, rec domain.Record) string {
	key, err := m.Gateway.Add(context.Background(), scope, rec)
	if err != nil {
		panic(err)
	}
	return key
}
