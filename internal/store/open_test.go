package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dafibh/ledger/internal/config"
	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	gateway, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	defer gateway.Close()

	scope := domain.NewScope(domain.Period{Year: 2024, Month: 3}, domain.CollectionIncome)
	_, err = gateway.Add(context.Background(), scope, domain.Record{Label: "Salary", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	gateway, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, gateway.Close())
	assert.FileExists(t, path)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
