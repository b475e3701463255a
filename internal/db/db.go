package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultBusyTimeout is how long a writer waits for the database lock.
const DefaultBusyTimeout = 5 * time.Second

// DBTX is the common interface satisfied by both *sql.DB and *sql.Tx.
// Repositories depend on it so the same code runs inside and outside a
// UnitOfWork transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// dsn builds a modernc DSN. Pragmas in the DSN apply to every pooled
// connection; transactions start IMMEDIATE so concurrent writers queue on
// the busy timeout instead of failing at lock upgrade.
func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	if path != MemoryPath {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Set("_txlock", "immediate")
	}
	return "file:" + path + "?" + q.Encode()
}

// OpenDB opens a SQLite database at the given path and runs migrations.
// If path is ":memory:", the pool is pinned to one connection so every
// caller sees the same database.
func OpenDB(path string) (*sql.DB, error) {
	return OpenDBWithTimeout(path, DefaultBusyTimeout)
}

func OpenDBWithTimeout(path string, busy time.Duration) (*sql.DB, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, busy))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
