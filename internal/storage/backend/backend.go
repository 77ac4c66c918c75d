// Package backend opens the stores selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"xolium-sdk/internal/config"
	"xolium-sdk/internal/storage"
	chstore "xolium-sdk/internal/storage/clickhouse"
	"xolium-sdk/internal/storage/memory"
	"xolium-sdk/internal/storage/migrations"
	pgstore "xolium-sdk/internal/storage/postgres"
)

// Stores holds the opened stores. Observations is nil when Postgres is
// configured without ClickHouse.
type Stores struct {
	Snapshots    storage.GraphSnapshotStore
	Observations storage.EdgeObservationStore

	closers []func()
}

// Close releases every connection.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Open creates stores for cfg. An empty Postgres DSN selects the in-memory
// snapshot store. Migrations run on every opened database.
func Open(ctx context.Context, cfg config.Storage, logger zerolog.Logger) (*Stores, error) {
	stores := &Stores{}

	if cfg.PostgresDSN == "" {
		logger.Warn().Msg("no postgres dsn, snapshots are kept in memory")
		stores.Snapshots = memory.NewGraphSnapshotStore()
	} else {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		stores.closers = append(stores.closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			stores.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.Snapshots = pgstore.NewGraphSnapshotStore(pool)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.closers = append(stores.closers, func() { _ = conn.Close() })
		stores.Observations = chstore.NewEdgeObservationStore(conn)
	} else if cfg.PostgresDSN == "" {
		stores.Observations = memory.NewEdgeObservationStore()
	}

	logger.Info().
		Bool("postgres", cfg.PostgresDSN != "").
		Bool("clickhouse", cfg.ClickhouseDSN != "").
		Msg("stores opened")
	return stores, nil
}
