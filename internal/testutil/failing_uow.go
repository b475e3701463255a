package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/taskup/internal/db"
)

// FailOnNthExecUoW injects Err on the Nth ExecContext call inside a
// transaction, so multi-write operations (imports, cascading deletes) can be
// checked for full rollback. Reads are not counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	execs atomic.Int32
}

// Execs reports how many writes the last transaction attempted.
func (u *FailOnNthExecUoW) Execs() int32 {
	return u.execs.Load()
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	u.execs.Store(0)

	if fnErr := fn(ctx, &failingTx{DBTX: tx, uow: u}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if n := f.uow.execs.Add(1); n == f.uow.FailOn {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
