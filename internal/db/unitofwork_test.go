package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func insertUser(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)`,
		id, id+"@example.com", id, "2025-01-01T00:00:00Z")
	return err
}

func countUsers(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

func TestWithinTx(t *testing.T) {
	errDeliberate := errors.New("deliberate failure")

	tests := []struct {
		name      string
		fn        func(ctx context.Context, tx db.DBTX) error
		wantErr   error
		wantUsers int
	}{
		{
			name: "commit on success",
			fn: func(ctx context.Context, tx db.DBTX) error {
				if err := insertUser(ctx, tx, "ada"); err != nil {
					return err
				}
				return insertUser(ctx, tx, "grace")
			},
			wantUsers: 2,
		},
		{
			name: "rollback on error after writes",
			fn: func(ctx context.Context, tx db.DBTX) error {
				if err := insertUser(ctx, tx, "ada"); err != nil {
					return err
				}
				return errDeliberate
			},
			wantErr:   errDeliberate,
			wantUsers: 0,
		},
		{
			name: "rollback on constraint violation",
			fn: func(ctx context.Context, tx db.DBTX) error {
				if err := insertUser(ctx, tx, "ada"); err != nil {
					return err
				}
				return insertUser(ctx, tx, "ada")
			},
			wantUsers: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			database, uow := setupUoW(t)
			err := uow.WithinTx(context.Background(), tc.fn)
			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.wantUsers == 0:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantUsers, countUsers(t, database))
		})
	}
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := setupUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertUser(ctx, tx, "ada")
			panic("boom")
		})
	})

	assert.Equal(t, 0, countUsers(t, database), "panic must roll back the transaction")
}

func TestWithinTx_CancelledContext(t *testing.T) {
	_, uow := setupUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
