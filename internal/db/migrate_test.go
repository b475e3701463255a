package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"users", "projects", "stakeholders", "risks", "risk_response_plans",
		"tasks", "resources", "work_packages", "resource_plans", "teams", "team_members",
		"scope_documents", "kv_entries"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestOpenDB_ForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)

	var on int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	assert.Equal(t, 1, on)

	_, err := db.Exec(`INSERT INTO stakeholders (id, project_id, user_id, percentage, created_at, updated_at)
		VALUES ('s1', 'missing', 'missing', 10, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "stakeholder referencing a missing project must be rejected")
}

func TestOpenDB_PercentageCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	ts := "2025-01-01T00:00:00Z"
	_, err := db.Exec(`INSERT INTO users (id, email, name, created_at) VALUES ('u1', 'a@b.c', 'A', ?), ('u2', 'b@b.c', 'B', ?)`, ts, ts)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO projects (id, short_id, name, owner_id, created_at, updated_at) VALUES ('p1', 'WEB01', 'Web', 'u1', ?, ?)`, ts, ts)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO stakeholders (id, project_id, user_id, percentage, created_at, updated_at) VALUES ('s1', 'p1', 'u2', 120, ?, ?)`, ts, ts)
	assert.Error(t, err)
}

func TestOpenDB_FileBackedUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "taskup.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}
