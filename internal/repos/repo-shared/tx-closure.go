package reposhared

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type TxFunc[T any] func(ctx context.Context, tx *sqlx.Tx) (T, error)

// ReadCommitted is what every settlement and relay transaction runs at. Row
// locks carry the ordering, not the isolation level.
var ReadCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

func TxClosure[T any](ctx context.Context, db *sqlx.DB, fn TxFunc[T]) (T, error) {
	return TxClosureOpts(ctx, db, ReadCommitted, fn)
}

// TxClosureOpts commits when fn returns nil and rolls back otherwise. fn's
// error is returned unwrapped so callers can still match on it.
func TxClosureOpts[T any](ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn TxFunc[T]) (res T, err error) {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
			}
			return
		}

		if cErr := tx.Commit(); cErr != nil {
			var zero T
			res, err = zero, fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(ctx, tx)
}
