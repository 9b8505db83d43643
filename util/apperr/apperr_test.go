package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindNotFound, KindOf(NotFound("x")))
	require.Equal(t, KindConflict, KindOf(Conflict("x")))
	require.Equal(t, KindBadInput, KindOf(BadInput("x")))
	require.Equal(t, Kind(""), KindOf(errors.New("plain")))
	require.Equal(t, Kind(""), KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create loan: %w", Conflict("book is not available"))
	require.Equal(t, KindConflict, KindOf(err))
	require.Contains(t, err.Error(), "book is not available")
}

func TestMapUnique(t *testing.T) {
	uniq := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	err := MapUnique(uniq, "duplicate")
	require.Equal(t, KindConflict, KindOf(err))
	require.Equal(t, "duplicate", err.Error())

	other := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	require.Equal(t, error(other), MapUnique(other, "duplicate"))

	plain := errors.New("db down")
	require.Equal(t, plain, MapUnique(plain, "duplicate"))
	require.NoError(t, MapUnique(nil, "duplicate"))
}
