package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against the configured Postgres instance
// (a Supabase database URL works unchanged). The pool is returned to the
// caller instead of being held in a package global so the routes layer can
// decide what to wire when no datastore is configured.
func Connect(dbUrl string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_URL: %v", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	// An unreachable database at startup is not fatal: the pool is returned
	// alongside the error so reads degrade to empty results until the
	// datastore comes back.
	if err := pool.Ping(context.Background()); err != nil {
		return pool, fmt.Errorf("unable to ping database: %v", err)
	}

	fmt.Println("Connected to PostgreSQL successfully")
	return pool, nil
}
