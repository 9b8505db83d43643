package apperr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapUnique turns a Postgres unique-violation into a Conflict with msg.
// Any other error passes through unchanged. The partial unique indexes on
// loans and reservations make this the backstop for races the row locks
// already prevent in the common path.
func MapUnique(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Conflict(msg)
	}
	return err
}
