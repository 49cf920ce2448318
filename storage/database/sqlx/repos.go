// Package sqlxrepos implements the domain repositories on PostgreSQL via
// sqlx. Write paths that must stay consistent (payment reconciliation,
// review rating upkeep) run inside a single transaction here rather than
// being composed by callers.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func mapNoRows(err, sentinel error) error {
	if err == sql.ErrNoRows {
		return sentinel
	}
	return err
}
