package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateLogin is returned when a farmer login is already taken.
var ErrDuplicateLogin = errors.New("login already taken")

// ErrUnknownFarmer is returned when a product or need references a farmer
// that does not exist. It matches ErrNotFound.
var ErrUnknownFarmer = fmt.Errorf("farmer %w", ErrNotFound)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
