package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TxFunc is the body of a transaction. It must only use tx for SQL; the
// pool-backed repositories would escape the transaction.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork runs a TxFunc atomically: every write it makes commits or none do.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx begins a transaction, runs fn and commits. An error or panic in
// fn rolls back; a failed rollback is joined onto fn's error.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
