package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RunInTx executes fn inside one database transaction. Multi-entity
// mutations (accept, cascade) run through here so partial failure leaves
// the pre-operation state.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
