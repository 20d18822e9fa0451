// Package postgres stores characters, spells and items in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hexsheet/internal/config"
)

// applicationName tags sheet connections in pg_stat_activity.
const applicationName = "hexsheet"

// Open connects to the database described by cfg and returns a Store that owns
// the connection pool.
//
// Precondition: cfg must pass config validation for the postgres storage driver.
// Postcondition: Returns a connected Store or a non-nil error; on error nothing is
// left open. The caller releases the Store with Close.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return NewStore(db), nil
}

// Health pings the database, giving up after timeout.
func (s *Store) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}
	return nil
}

// DB returns the underlying connection pool.
func (s *Store) DB() *pgxpool.Pool {
	return s.db
}

// Close releases every connection. Stores built with NewStore share the
// caller's pool, so Close closes it for them too.
func (s *Store) Close() {
	s.db.Close()
}
