package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/taskup/internal/db"
)

// NewTestDB returns a migrated in-memory database that lives for the test.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return openForTest(t, db.MemoryPath)
}

// NewFileTestDB returns a migrated database file under t.TempDir(). The
// pool may hold several connections, which :memory: cannot.
func NewFileTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return openForTest(t, filepath.Join(t.TempDir(), "taskup_test.db"))
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

func openForTest(t testing.TB, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("open test db %s: %v", path, err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}
