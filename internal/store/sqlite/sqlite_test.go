package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

var scope = domain.NewScope(domain.Period{Year: 2024, Month: 3}, domain.CollectionExpense)

func TestBackend_InsertAndList(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "b", Label: "Rent", Amount: decimal.NewFromInt(500)}))
	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "a", Label: "Lunch", Amount: decimal.RequireFromString("15.25"), CategoryKey: "food"}))

	records, err := backend.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, "15.25", records[0].Amount.StringFixed(2))
	assert.Equal(t, "food", records[0].CategoryKey)
	assert.Equal(t, "", records[1].CategoryKey)
}

func TestBackend_Replace(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "a", Label: "Lunch", Amount: decimal.NewFromInt(15)}))
	require.NoError(t, backend.Replace(ctx, scope, domain.Record{Key: "a", Label: "Dinner", Amount: decimal.NewFromInt(30)}))

	records, err := backend.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dinner", records[0].Label)

	err = backend.Replace(ctx, scope, domain.Record{Key: "missing"})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestBackend_DeleteIsIdempotent(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "a", Label: "Lunch"}))
	require.NoError(t, backend.Delete(ctx, scope, "a"))
	require.NoError(t, backend.Delete(ctx, scope, "a"))

	records, err := backend.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBackend_DeleteAllOnlyTouchesScope(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()
	income := domain.NewScope(scope.Period, domain.CollectionIncome)

	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "a", Label: "Lunch"}))
	require.NoError(t, backend.Insert(ctx, income, domain.Record{Key: "b", Label: "Salary"}))
	require.NoError(t, backend.DeleteAll(ctx, scope))

	expenses, err := backend.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	incomes, err := backend.List(ctx, income)
	require.NoError(t, err)
	assert.Len(t, incomes, 1)
}

func TestNew_ReopensMigratedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.Insert(context.Background(), scope, domain.Record{Key: "a", Label: "Lunch"}))
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	defer second.Close()

	records, err := second.List(context.Background(), scope)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
