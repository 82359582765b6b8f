// Package storage opens the configured ledger backend.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cimillas/concert-ledger/internal/app"
	"github.com/cimillas/concert-ledger/internal/config"
	"github.com/cimillas/concert-ledger/internal/storage/postgres"
	"github.com/cimillas/concert-ledger/internal/storage/sqlite"
	"github.com/cimillas/concert-ledger/migrations"
)

// Backend is a ledger repository that owns its connection.
type Backend interface {
	app.LedgerRepository
	Close() error
}

// Open connects to the backend named by cfg.Driver and applies migrations.
// A store that cannot be reached is returned as an error; nothing retries.
func Open(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		store, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("driver", config.DriverSQLite).Str("path", cfg.Path).Msg("store opened")
		return store, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := migrations.ApplyPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Str("driver", config.DriverPostgres).Msg("store opened")
		return &postgresBackend{LedgerRepository: postgres.NewLedgerRepository(pool), pool: pool}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

type postgresBackend struct {
	*postgres.LedgerRepository
	pool *pgxpool.Pool
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
