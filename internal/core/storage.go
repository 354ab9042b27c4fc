package core

import (
	"context"
	"fmt"

	"reliefcore/internal/infra/persistence/memory"
	"reliefcore/internal/infra/persistence/postgres"
	"reliefcore/internal/infra/persistence/sqlite"
	"reliefcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageOptions selects and configures a backend.
type StorageOptions struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenPersistentStore opens the configured backend. Defaults to sqlite when
// no driver is set. Durable stores also implement io.Closer.
func OpenPersistentStore(ctx context.Context, opts StorageOptions, engine *domain.RulesEngine, memOpts ...memory.Option) (domain.PersistentStore, error) {
	driver := opts.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine, memOpts...), nil
	case StorageSQLite:
		return sqlite.NewStore(opts.SQLitePath, engine, memOpts...)
	case StoragePostgres:
		return postgres.NewStore(ctx, opts.PostgresDSN, engine, memOpts...)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
