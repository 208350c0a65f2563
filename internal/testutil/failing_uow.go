package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/db"
)

// ErrInjected is the default failure returned by FailOnNthExecUoW.
var ErrInjected = errors.New("injected exec failure")

// FailOnNthExecUoW runs real transactions but fails the FailOn-th write
// (counted from 1) whose SQL contains Match. An empty Match counts every
// write. Reads are never counted. Use it to prove that a multi-tour write
// rolls back as a whole.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	Match  string
	FailOn int
	Err    error

	// Execs counts the matching writes seen so far, across transactions.
	Execs int
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(ctx, &failingTx{DBTX: tx, uow: u}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.uow.Match) {
		f.uow.Execs++
		if f.uow.Execs == f.uow.FailOn {
			if f.uow.Err != nil {
				return nil, f.uow.Err
			}
			return nil, ErrInjected
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
