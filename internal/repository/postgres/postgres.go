// Package postgres implements the board and account repositories on pgx.
// Every repository resolves its connection through db.Conn, so calls made
// inside db.RunInTx share the transaction.
package postgres

import (
	"errors"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrRecordNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("username or email already taken")
	}
	return err
}
