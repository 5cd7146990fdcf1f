package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation  = "23505"
	notNullViolation = "23502"
)

// ErrMissingValue is a NULL written to a NOT NULL column
var ErrMissingValue = errors.New("value is required")

// isUniqueViolation reports whether err is a unique constraint violation on constraint
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// notNullColumn returns the column of a NOT NULL violation
func notNullColumn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != notNullViolation {
		return "", false
	}
	return pgErr.ColumnName, true
}
