// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It is the default storage backend; modernc.org/sqlite is a pure
// Go driver, so the binary cross-compiles without cgo.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the database/sql connection pool. The repository interfaces are
// implemented by the UserStore and ArticleStore views returned from Users
// and Articles. Connections are acquired per query and returned to the pool
// on every exit path; nothing holds a connection across requests.
type DB struct {
	conn *sql.DB
}

// Users returns the user repository view of this database.
func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// Articles returns the article repository view of this database.
func (db *DB) Articles() *ArticleStore {
	return &ArticleStore{conn: db.conn}
}

// New opens the database at dbPath (":memory:" for tests), verifies the
// connection, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps reads concurrent with writes. SQLite does not enforce
	// foreign keys unless the pragma is on.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Statements are idempotent, so running them on
// an existing database is safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id       INTEGER PRIMARY KEY,
			title    TEXT NOT NULL,
			summary  TEXT NOT NULL DEFAULT '',
			content  TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'all'
		);
	`)
	if err != nil {
		return fmt.Errorf("creating articles table: %w", err)
	}

	// Articles are reference data owned externally; seed a pair on first
	// run so a fresh checkout renders something.
	_, err = db.conn.Exec(`
		INSERT OR IGNORE INTO articles (id, title, summary, content, category) VALUES
			(1, 'Welcome to the site', 'A public sample article visible to everyone.',
			 'This is the body of the public sample article.', 'all'),
			(2, 'Members corner', 'A preview of a members-only sample article.',
			 'This is the body of the members-only sample article.', 'limited');
	`)
	if err != nil {
		return fmt.Errorf("seeding articles: %w", err)
	}

	return nil
}
