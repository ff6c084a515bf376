// Package postgres implements the repository interfaces on PostgreSQL via a
// pgx connection pool. Selected with DB_DRIVER=postgres for deployments
// where the embedded SQLite file is not an option.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool and provides the repository methods.
type DB struct {
	pool *pgxpool.Pool
}

// New creates the connection pool, verifies the connection, and runs
// migrations.
func New(ctx context.Context, dsn string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing dsn: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

// Users returns the user repository view of this database.
func (db *DB) Users() *UserStore {
	return &UserStore{pool: db.pool}
}

// Articles returns the article repository view of this database.
func (db *DB) Articles() *ArticleStore {
	return &ArticleStore{pool: db.pool}
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_email_key UNIQUE (email)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS articles (
			id       BIGINT PRIMARY KEY,
			title    TEXT NOT NULL,
			summary  TEXT NOT NULL DEFAULT '',
			content  TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'all'
		)
	`)
	if err != nil {
		return fmt.Errorf("creating articles table: %w", err)
	}

	return nil
}
