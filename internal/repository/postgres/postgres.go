package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgExecutor is the subset of pgx operations the repositories need; both
// pgxpool.Pool and pgx.Tx satisfy it, as do test mocks.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is implemented by executors that can open transactions.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
