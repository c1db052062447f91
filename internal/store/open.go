package store

import (
	"context"
	"fmt"

	"github.com/dafibh/ledger/internal/config"
	"github.com/dafibh/ledger/internal/store/memory"
	"github.com/dafibh/ledger/internal/store/postgres"
	"github.com/dafibh/ledger/internal/store/sqlite"
	"github.com/dafibh/ledger/internal/store/tablestore"
	"github.com/rs/zerolog/log"
)

// Open connects the backend selected by cfg and wraps it in a Gateway
func Open(ctx context.Context, cfg config.StoreConfig) (*Gateway, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info().Str("backend", cfg.Backend).Msg("Record store ready")
	return NewGateway(backend), nil
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		backend, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return backend, nil
	case config.BackendPostgres:
		backend, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return backend, nil
	case config.BackendAzTables:
		backend, err := tablestore.New(ctx, cfg.TableServiceURL, cfg.TablePrefix)
		if err != nil {
			return nil, fmt.Errorf("open table store: %w", err)
		}
		return backend, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
